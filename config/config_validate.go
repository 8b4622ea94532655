package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/caasmo/countryblock/cache/ristretto"
)

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateRateLimit(&cfg.RateLimit); err != nil {
		return fmt.Errorf("rate_limit config validation failed: %w", err)
	}
	if err := validateSchedule(cfg); err != nil {
		return fmt.Errorf("scheduler config validation failed: %w", err)
	}
	if err := validateGeoIP(&cfg.GeoIP); err != nil {
		return fmt.Errorf("geoip config validation failed: %w", err)
	}
	if err := validateTopCountries(&cfg.TopCountries); err != nil {
		return fmt.Errorf("top_countries config validation failed: %w", err)
	}
	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	if err := validateMetrics(&cfg.Metrics); err != nil {
		return fmt.Errorf("metrics config validation failed: %w", err)
	}
	if err := validateEndpoints(cfg); err != nil {
		return fmt.Errorf("endpoints config validation failed: %w", err)
	}
	return nil
}

// validateServer checks the Server configuration section.
// It ensures the Addr field is not empty and contains a valid host:port or :port format.
// If only a port is provided (e.g., ":8080"), it defaults the host to "localhost".
//
// Allowed formats:
//   - "host:port" (e.g., "example.com:8080", "127.0.0.1:8080", "[::1]:8080")
//   - ":port"     (e.g., ":8080" becomes "localhost:8080")
//
// The port part is mandatory.
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
	}
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}

	// Reconstruct the address with the defaulted host if necessary
	server.Addr = net.JoinHostPort(host, port)

	// Basic check: Ensure port is numeric (net.SplitHostPort doesn't guarantee this fully)
	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}

	durations := map[string]time.Duration{
		"shutdown_graceful_timeout": server.ShutdownGracefulTimeout.Duration,
		"read_timeout":              server.ReadTimeout.Duration,
		"read_header_timeout":       server.ReadHeaderTimeout.Duration,
		"write_timeout":             server.WriteTimeout.Duration,
		"idle_timeout":              server.IdleTimeout.Duration,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	switch server.Router {
	case RouterHttprouter, RouterServeMux:
	default:
		return fmt.Errorf("unknown router %q, use %q or %q", server.Router, RouterHttprouter, RouterServeMux)
	}

	if strings.ContainsAny(server.ClientIpProxyHeader, " \t:") {
		return fmt.Errorf("invalid client_ip_proxy_header %q", server.ClientIpProxyHeader)
	}
	return nil
}

func validateRateLimit(rl *RateLimit) error {
	if rl.PermitLimit < 1 {
		return fmt.Errorf("permit_limit must be at least 1, got %d", rl.PermitLimit)
	}
	if rl.Window.Duration <= 0 {
		return fmt.Errorf("window must be positive, got %s", rl.Window)
	}
	return nil
}

// validateSchedule checks that no job is scheduled more often than the
// scheduler ticks.
func validateSchedule(cfg *Config) error {
	tick := cfg.Scheduler.Interval.Duration
	if tick <= 0 {
		return fmt.Errorf("interval must be positive, got %s", tick)
	}

	jobs := map[string]time.Duration{
		"sweeper.interval":            cfg.Sweeper.Interval.Duration,
		"rate_limit.window":           cfg.RateLimit.Window.Duration,
		"top_countries.tick_interval": cfg.TopCountries.TickInterval.Duration,
	}
	for name, d := range jobs {
		if d < tick {
			return fmt.Errorf("%s (%s) is shorter than the scheduler interval (%s)", name, d, tick)
		}
	}
	return nil
}

func validateGeoIP(g *GeoIP) error {
	u, err := url.Parse(g.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %q", g.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q has no host", g.BaseURL)
	}
	if g.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", g.Timeout)
	}
	if g.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second cannot be negative")
	}
	if g.RequestsPerSecond > 0 && g.Burst < 1 {
		return fmt.Errorf("burst must be at least 1 when requests_per_second is set")
	}
	if g.CacheTTL.Duration <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %s", g.CacheTTL)
	}
	if !ristretto.ValidLevel(g.CacheLevel) {
		return fmt.Errorf("unknown cache_level %q", g.CacheLevel)
	}
	return nil
}

func validateTopCountries(tc *TopCountries) error {
	if !tc.Activated {
		return nil
	}
	if tc.K < 1 {
		return fmt.Errorf("k must be at least 1")
	}
	if tc.WindowSize < 1 {
		return fmt.Errorf("window_size must be at least 1")
	}
	if tc.Width < 1 || tc.Depth < 1 {
		return fmt.Errorf("width and depth must be at least 1")
	}
	if tc.TickInterval.Duration <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	return nil
}

func validateLog(l *Log) error {
	switch l.Format {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}

	limits := l.Request.Limits
	var errs []error
	if limits.URILength < 64 {
		errs = append(errs, fmt.Errorf("uri_length must be at least 64"))
	}
	if limits.UserAgentLength < 32 {
		errs = append(errs, fmt.Errorf("user_agent_length must be at least 32"))
	}
	if limits.RefererLength < 64 {
		errs = append(errs, fmt.Errorf("referer_length must be at least 64"))
	}
	if limits.RemoteIPLength < 15 {
		errs = append(errs, fmt.Errorf("remote_ip_length must be at least 15"))
	}
	return errors.Join(errs...)
}

func validateMetrics(m *Metrics) error {
	if !m.Activated {
		return nil
	}
	if !strings.HasPrefix(m.Endpoint, "/") {
		return fmt.Errorf("endpoint must start with /, got %q", m.Endpoint)
	}
	for _, ip := range m.AllowedIPs {
		if _, err := netip.ParseAddr(ip); err != nil {
			return fmt.Errorf("invalid allowed ip %q: %w", ip, err)
		}
	}
	return nil
}

func validateEndpoints(cfg *Config) error {
	seen := make(map[string]string)
	for name, ep := range cfg.Endpoints.All() {
		method, path, err := SplitEndpoint(ep)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		key := method + " " + path
		if other, dup := seen[key]; dup {
			return fmt.Errorf("%s and %s share the pattern %q", name, other, key)
		}
		seen[key] = name
	}
	if cfg.Metrics.Activated {
		if other, dup := seen["GET "+cfg.Metrics.Endpoint]; dup {
			return fmt.Errorf("metrics endpoint collides with %s", other)
		}
	}
	return nil
}
