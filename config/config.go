package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Config is the whole service configuration, decoded from TOML.
type Config struct {
	// Source is the file the config was read from, empty for defaults.
	Source string `toml:"-"`

	Server       Server       `toml:"server"`
	RateLimit    RateLimit    `toml:"rate_limit"`
	Sweeper      Sweeper      `toml:"sweeper"`
	Scheduler    Scheduler    `toml:"scheduler"`
	GeoIP        GeoIP        `toml:"geoip"`
	TopCountries TopCountries `toml:"top_countries"`
	Log          Log          `toml:"log"`
	Metrics      Metrics      `toml:"metrics"`
	Endpoints    Endpoints    `toml:"endpoints"`
}

const (
	RouterHttprouter = "httprouter"
	RouterServeMux   = "servemux"
)

type Server struct {
	Addr                    string   `toml:"addr"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`

	// ClientIpProxyHeader names the header carrying the client address when
	// running behind a proxy, e.g. X-Forwarded-For. Empty trusts RemoteAddr.
	ClientIpProxyHeader string `toml:"client_ip_proxy_header"`

	// Router is httprouter or servemux.
	Router string `toml:"router"`
}

// RateLimit configures the per client fixed window limiter.
type RateLimit struct {
	Activated   bool     `toml:"activated"`
	PermitLimit int      `toml:"permit_limit"`
	Window      Duration `toml:"window"`
}

type Sweeper struct {
	Interval Duration `toml:"interval"`
}

// Scheduler ticks at Interval; no job runs more often than that.
type Scheduler struct {
	Interval Duration `toml:"interval"`
}

type GeoIP struct {
	BaseURL   string   `toml:"base_url"`
	Timeout   Duration `toml:"timeout"`
	UserAgent string   `toml:"user_agent"`

	// outbound budget, zero disables it
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`

	CacheTTL   Duration `toml:"cache_ttl"`
	CacheLevel string   `toml:"cache_level"`
}

// TopCountries sizes the hot country sketch. The window spans
// WindowSize * TickInterval.
type TopCountries struct {
	Activated    bool     `toml:"activated"`
	K            int      `toml:"k"`
	WindowSize   int      `toml:"window_size"`
	Width        int      `toml:"width"`
	Depth        int      `toml:"depth"`
	TickInterval Duration `toml:"tick_interval"`
}

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

type Log struct {
	Level   LogLevel   `toml:"level"`
	Format  string     `toml:"format"`
	Request LogRequest `toml:"request"`
}

type LogRequest struct {
	Activated bool             `toml:"activated"`
	Limits    LogRequestLimits `toml:"limits"`
}

type LogRequestLimits struct {
	URILength       int `toml:"uri_length"`
	UserAgentLength int `toml:"user_agent_length"`
	RefererLength   int `toml:"referer_length"`
	RemoteIPLength  int `toml:"remote_ip_length"`
}

type Metrics struct {
	Activated  bool     `toml:"activated"`
	Endpoint   string   `toml:"endpoint"`
	AllowedIPs []string `toml:"allowed_ips"`
}

// Endpoints are "METHOD /path" patterns. Path parameters use {name}.
type Endpoints struct {
	BlockCountry   string `toml:"block_country"`
	UnblockCountry string `toml:"unblock_country"`
	ListBlocked    string `toml:"list_blocked"`
	TemporalBlock  string `toml:"temporal_block"`
	ListAttempts   string `toml:"list_attempts"`
	CheckBlock     string `toml:"check_block"`
	LookupIp       string `toml:"lookup_ip"`
	LookupIpAddr   string `toml:"lookup_ip_addr"`
	TopCountries   string `toml:"top_countries"`
}

// All returns the endpoints keyed by their TOML name.
func (e Endpoints) All() map[string]string {
	return map[string]string{
		"block_country":   e.BlockCountry,
		"unblock_country": e.UnblockCountry,
		"list_blocked":    e.ListBlocked,
		"temporal_block":  e.TemporalBlock,
		"list_attempts":   e.ListAttempts,
		"check_block":     e.CheckBlock,
		"lookup_ip":       e.LookupIp,
		"lookup_ip_addr":  e.LookupIpAddr,
		"top_countries":   e.TopCountries,
	}
}

// Path returns the path part of an endpoint pattern.
func (e Endpoints) Path(endpoint string) string {
	_, path, _ := SplitEndpoint(endpoint)
	return path
}

// SplitEndpoint splits "METHOD /path" into its parts.
func SplitEndpoint(endpoint string) (method, path string, err error) {
	method, path, ok := strings.Cut(strings.TrimSpace(endpoint), " ")
	path = strings.TrimSpace(path)
	if !ok || method == "" || path == "" {
		return "", "", fmt.Errorf("endpoint %q must have the form \"METHOD /path\"", endpoint)
	}
	if method != strings.ToUpper(method) {
		return "", "", fmt.Errorf("endpoint %q: method must be uppercase", endpoint)
	}
	if !strings.HasPrefix(path, "/") {
		return "", "", fmt.Errorf("endpoint %q: path must start with /", endpoint)
	}
	return method, path, nil
}

// Duration wraps time.Duration for TOML strings like "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LogLevel wraps slog.Level for TOML strings like "info" or "debug".
type LogLevel struct {
	slog.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	return l.Level.UnmarshalText(text)
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return l.Level.MarshalText()
}

// Provider hands out the current config. Readers never see a partially
// updated config.
type Provider struct {
	value atomic.Pointer[Config]
}

func NewProvider(cfg *Config) *Provider {
	if cfg == nil {
		panic("config: provider needs a non nil config")
	}
	p := &Provider{}
	p.value.Store(cfg)
	return p
}

func (p *Provider) Get() *Config {
	return p.value.Load()
}

func (p *Provider) Update(cfg *Config) {
	if cfg == nil {
		return
	}
	p.value.Store(cfg)
}
