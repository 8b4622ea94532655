package core

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/caasmo/countryblock/attemptlog"
	"github.com/caasmo/countryblock/config"
	"github.com/caasmo/countryblock/geoip"
	"github.com/caasmo/countryblock/metrics"
	"github.com/caasmo/countryblock/ratelimit"
	"github.com/caasmo/countryblock/registry"
	"github.com/caasmo/countryblock/router"
	"github.com/caasmo/countryblock/topk"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App is the service context shared by every handler and background job.
// It owns the block registry, the attempt log and the rate limiter; all of
// them are built once at startup and passed around by reference.
type App struct {
	registry     *registry.Registry
	attempts     *attemptlog.Log
	limiter      *ratelimit.Limiter
	geo          geoip.Lookup
	topCountries *topk.CountrySketch // nil when deactivated
	metrics      *metrics.Metrics
	router       router.Router

	configProvider *config.Provider
	logger         *slog.Logger
	validator      Validator

	metricsHandler http.Handler
}

func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.configProvider == nil {
		return nil, fmt.Errorf("config provider is required but was not provided (use WithConfigProvider)")
	}
	if a.logger == nil {
		return nil, fmt.Errorf("logger is required but was not provided (use WithLogger)")
	}
	if a.geo == nil {
		return nil, fmt.Errorf("geoip lookup is required but was not provided (use WithGeoIP)")
	}
	if a.router == nil {
		return nil, fmt.Errorf("router is required but was not provided (use WithRouter)")
	}

	cfg := a.configProvider.Get()
	if a.registry == nil {
		a.registry = registry.New()
	}
	if a.attempts == nil {
		a.attempts = attemptlog.New()
	}
	if a.limiter == nil {
		a.limiter = ratelimit.New(cfg.RateLimit.PermitLimit, cfg.RateLimit.Window.Duration)
	}
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	if a.validator == nil {
		a.validator = NewValidator()
	}

	a.metrics.RegisterGauge("blocked_countries", "Countries currently blocked.", func() float64 {
		return float64(a.registry.Len())
	})
	a.metrics.RegisterGauge("attempts", "Block checks recorded in the attempt log.", func() float64 {
		return float64(a.attempts.Len())
	})
	a.metricsHandler = promhttp.HandlerFor(a.metrics.Registry, promhttp.HandlerOpts{})

	return a, nil
}

func (a *App) Registry() *registry.Registry {
	return a.registry
}

func (a *App) Attempts() *attemptlog.Log {
	return a.attempts
}

func (a *App) Limiter() *ratelimit.Limiter {
	return a.limiter
}

func (a *App) GeoIP() geoip.Lookup {
	return a.geo
}

// TopCountries returns the hot country sketch, nil if not configured.
func (a *App) TopCountries() *topk.CountrySketch {
	return a.topCountries
}

func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Router returns the application's router instance
func (a *App) Router() router.Router {
	return a.router
}

func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) ConfigProvider() *config.Provider {
	return a.configProvider
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) Validator() Validator {
	return a.validator
}
