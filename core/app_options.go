package core

import (
	"log/slog"

	"github.com/caasmo/countryblock/attemptlog"
	"github.com/caasmo/countryblock/config"
	"github.com/caasmo/countryblock/geoip"
	"github.com/caasmo/countryblock/metrics"
	"github.com/caasmo/countryblock/ratelimit"
	"github.com/caasmo/countryblock/registry"
	"github.com/caasmo/countryblock/router"
	"github.com/caasmo/countryblock/topk"
)

type Option func(*App)

// WithRegistry sets the block registry. A fresh one is created if omitted.
func WithRegistry(r *registry.Registry) Option {
	return func(a *App) {
		a.registry = r
	}
}

func WithAttemptLog(l *attemptlog.Log) Option {
	return func(a *App) {
		a.attempts = l
	}
}

// WithLimiter sets the rate limiter. If omitted one is built from
// the [rate_limit] config section.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(a *App) {
		a.limiter = l
	}
}

// WithGeoIP sets the IP to country collaborator.
func WithGeoIP(g geoip.Lookup) Option {
	return func(a *App) {
		a.geo = g
	}
}

func WithTopCountries(s *topk.CountrySketch) Option {
	return func(a *App) {
		a.topCountries = s
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithRouter sets the router implementation
func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithConfigProvider sets the application's configuration provider.
func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

// WithLogger sets the logger implementation
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

func WithValidator(v Validator) Option {
	return func(a *App) {
		a.validator = v
	}
}
