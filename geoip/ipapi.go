package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://ipapi.co"
	DefaultTimeout   = 5 * time.Second
	DefaultUserAgent = "countryblock/1.0"

	// ipapi answers are small, anything bigger is not a lookup result
	maxBodySize = 64 << 10
)

// Options configures Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// RequestsPerSecond and Burst size the outbound token bucket. A zero
	// rate disables the budget.
	RequestsPerSecond float64
	Burst             int
}

// ipapiResponse mirrors the fields of https://ipapi.co/{ip}/json/ we use.
type ipapiResponse struct {
	IP            string  `json:"ip"`
	Network       string  `json:"network"`
	City          string  `json:"city"`
	Region        string  `json:"region"`
	CountryCode   string  `json:"country_code"`
	CountryName   string  `json:"country_name"`
	ContinentCode string  `json:"continent_code"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Timezone      string  `json:"timezone"`
	Org           string  `json:"org"`
	ASN           string  `json:"asn"`

	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Client queries ipapi.co. It is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	logger     *slog.Logger
	httpClient *http.Client
	budget     *rate.Limiter // nil when unlimited
}

func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("geoip: logger is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("geoip: invalid base url: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		logger:     logger.With("component", "geoip"),
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.budget = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c, nil
}

// Lookup asks ipapi.co for ip. It never retries.
func (c *Client) Lookup(ctx context.Context, ip string) (Info, error) {
	if c.budget != nil && !c.budget.Allow() {
		c.logger.Warn("outbound lookup budget exhausted", "ip", ip)
		return Info{}, ErrBudgetExhausted
	}

	endpoint := c.baseURL + "/" + url.PathEscape(ip) + "/json/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Info{}, fmt.Errorf("%w: build request: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return Info{}, fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
	}

	var body ipapiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&body); err != nil {
		return Info{}, fmt.Errorf("%w: decode response: %w", ErrUpstream, err)
	}
	if body.Error {
		return Info{}, fmt.Errorf("%w: %s", ErrUpstream, body.Reason)
	}

	info := Info{
		IP:            body.IP,
		Network:       body.Network,
		City:          body.City,
		Region:        body.Region,
		CountryCode:   strings.ToUpper(strings.TrimSpace(body.CountryCode)),
		CountryName:   body.CountryName,
		ContinentCode: body.ContinentCode,
		Latitude:      body.Latitude,
		Longitude:     body.Longitude,
		Timezone:      body.Timezone,
		Org:           body.Org,
		ASN:           body.ASN,
	}
	if info.IP == "" {
		info.IP = ip
	}
	if info.CountryCode == "" {
		info.CountryCode = UnknownCountry
	}
	return info, nil
}
