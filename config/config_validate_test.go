package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid default config", func(t *testing.T) {
		cfg := NewDefaultConfig()
		if err := Validate(cfg); err != nil {
			t.Fatalf("Validate() with default config failed: %v", err)
		}
	})

	// Each case breaks exactly one sub-validator of a valid config.
	errorCases := []struct {
		name    string
		mutator func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"addr without port", func(c *Config) { c.Server.Addr = "invalid" }},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = Duration{} }},
		{"unknown router", func(c *Config) { c.Server.Router = "gin" }},
		{"bad proxy header", func(c *Config) { c.Server.ClientIpProxyHeader = "X Forwarded" }},
		{"zero permit limit", func(c *Config) { c.RateLimit.PermitLimit = 0 }},
		{"zero window", func(c *Config) { c.RateLimit.Window = Duration{} }},
		{"zero scheduler interval", func(c *Config) { c.Scheduler.Interval = Duration{} }},
		{"sweeper faster than scheduler", func(c *Config) { c.Sweeper.Interval = Duration{Duration: time.Second} }},
		{"geoip bad scheme", func(c *Config) { c.GeoIP.BaseURL = "ftp://ipapi.co" }},
		{"geoip no host", func(c *Config) { c.GeoIP.BaseURL = "https://" }},
		{"geoip zero timeout", func(c *Config) { c.GeoIP.Timeout = Duration{} }},
		{"geoip negative rate", func(c *Config) { c.GeoIP.RequestsPerSecond = -1 }},
		{"geoip zero burst", func(c *Config) { c.GeoIP.Burst = 0 }},
		{"geoip cache level", func(c *Config) { c.GeoIP.CacheLevel = "" }},
		{"top countries zero k", func(c *Config) { c.TopCountries.K = 0 }},
		{"top countries zero depth", func(c *Config) { c.TopCountries.Depth = 0 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"request log limits", func(c *Config) { c.Log.Request.Limits.URILength = 0 }},
		{"metrics endpoint", func(c *Config) { c.Metrics.Endpoint = "metrics" }},
		{"metrics cidr", func(c *Config) { c.Metrics.AllowedIPs = []string{"10.0.0.0/8"} }},
		{"endpoint format", func(c *Config) { c.Endpoints.ListBlocked = "/api/countries/blocked" }},
		{"duplicate endpoint", func(c *Config) { c.Endpoints.ListAttempts = c.Endpoints.ListBlocked }},
		{"metrics collides", func(c *Config) { c.Metrics.Endpoint = "/api/countries/blocked" }},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutator(cfg)
			if err := Validate(cfg); err == nil {
				t.Errorf("Validate() expected an error for %s, but got nil", tt.name)
			}
		})
	}
}

func TestValidate_DisabledSectionsSkipChecks(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.TopCountries.Activated = false
	cfg.TopCountries.K = 0
	cfg.Metrics.Activated = false
	cfg.Metrics.AllowedIPs = []string{"not-an-ip"}

	if err := Validate(cfg); err != nil {
		t.Errorf("disabled sections should not be validated: %v", err)
	}
}

func TestValidateServer_Addr(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{":8080", "localhost:8080"},
		{"127.0.0.1:9000", "127.0.0.1:9000"},
		{"[::1]:8080", "[::1]:8080"},
	}
	for _, tc := range testCases {
		s := NewDefaultConfig().Server
		s.Addr = tc.in
		if err := validateServer(&s); err != nil {
			t.Errorf("validateServer(%q) failed: %v", tc.in, err)
			continue
		}
		if s.Addr != tc.want {
			t.Errorf("validateServer(%q) normalized to %q, want %q", tc.in, s.Addr, tc.want)
		}
	}
}
