package config

import (
	"log/slog"
	"time"
)

// NewDefaultConfig creates a new Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: Server{
			Addr:                    ":8080",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 2 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			// check-block waits on the upstream lookup
			WriteTimeout:        Duration{Duration: 10 * time.Second},
			IdleTimeout:         Duration{Duration: 1 * time.Minute},
			ClientIpProxyHeader: "",
			Router:              RouterHttprouter,
		},
		RateLimit: RateLimit{
			Activated:   true,
			PermitLimit: 5,
			Window:      Duration{Duration: time.Minute},
		},
		Sweeper: Sweeper{
			Interval: Duration{Duration: time.Minute},
		},
		Scheduler: Scheduler{
			Interval: Duration{Duration: 10 * time.Second},
		},
		GeoIP: GeoIP{
			BaseURL:           "https://ipapi.co",
			Timeout:           Duration{Duration: 5 * time.Second},
			UserAgent:         "countryblock/1.0",
			RequestsPerSecond: 1,
			Burst:             10,
			CacheTTL:          Duration{Duration: time.Hour},
			CacheLevel:        "small",
		},
		TopCountries: TopCountries{
			Activated:    true,
			K:            10,
			WindowSize:   60,
			Width:        1024,
			Depth:        3,
			TickInterval: Duration{Duration: time.Minute},
		},
		Log: Log{
			Level:  LogLevel{Level: slog.LevelInfo},
			Format: LogFormatJSON,
			Request: LogRequest{
				Activated: true,
				Limits: LogRequestLimits{
					URILength:       512, // Minimum: 64
					UserAgentLength: 256, // Minimum: 32
					RefererLength:   512, // Minimum: 64
					RemoteIPLength:  64,  // Minimum: 15
				},
			},
		},
		Metrics: Metrics{
			Activated:  true,
			Endpoint:   "/metrics",
			AllowedIPs: []string{"127.0.0.1", "::1"}, // Only exact IPs allowed, no CIDR ranges
		},
		Endpoints: Endpoints{
			BlockCountry:   "POST /api/countries/block",
			UnblockCountry: "DELETE /api/countries/block/{code}",
			ListBlocked:    "GET /api/countries/blocked",
			TemporalBlock:  "POST /api/countries/temporal-block",
			ListAttempts:   "GET /api/countries/logs/blocked-attempts",
			CheckBlock:     "GET /api/countries/ip/check-block",
			LookupIp:       "GET /api/countries/ip/lookup",
			LookupIpAddr:   "GET /api/countries/ip/lookup/{ip}",
			TopCountries:   "GET /api/countries/logs/top-countries",
		},
	}
}
