package countryblock

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/caasmo/countryblock/cache/ristretto"
	"github.com/caasmo/countryblock/config"
	"github.com/caasmo/countryblock/core"
	"github.com/caasmo/countryblock/core/prerouter"
	"github.com/caasmo/countryblock/geoip"
	"github.com/caasmo/countryblock/router"
	"github.com/caasmo/countryblock/router/httprouter"
	"github.com/caasmo/countryblock/router/servemux"
	"github.com/caasmo/countryblock/scheduler"
	"github.com/caasmo/countryblock/server"
	"github.com/caasmo/countryblock/sweeper"
	"github.com/caasmo/countryblock/topk"
	phuslog "github.com/phuslu/log"
)

// initializer carries what the options provide and what the setup steps
// build, in order.
type initializer struct {
	configPath string
	logger     *slog.Logger
	geo        geoip.Lookup

	provider  *config.Provider
	sketch    *topk.CountrySketch
	app       *core.App
	scheduler *scheduler.Scheduler
	handler   http.Handler
	server    *server.Server
}

// New loads the configuration at configPath and wires the service: the app
// with its routes, the prerouter middleware chain, the scheduler jobs and
// the server that runs them.
func New(configPath string, opts ...Option) (*core.App, *server.Server, error) {
	init := &initializer{configPath: configPath}
	for _, opt := range opts {
		opt(init)
	}

	if err := init.setup(); err != nil {
		return nil, nil, err
	}
	return init.app, init.server, nil
}

func (i *initializer) setup() error {
	cfg, err := i.setupConfig()
	if err != nil {
		return err
	}

	if i.logger == nil {
		i.logger = newLogger(cfg.Log)
	}

	rt, err := setupDefaultRouter(cfg.Server.Router)
	if err != nil {
		return err
	}

	if i.geo == nil {
		if i.geo, err = i.setupDefaultGeoIP(cfg.GeoIP); err != nil {
			return err
		}
	}

	coreOpts := []core.Option{
		core.WithConfigProvider(i.provider),
		core.WithLogger(i.logger),
		core.WithRouter(rt),
		core.WithGeoIP(i.geo),
	}
	if cfg.TopCountries.Activated {
		i.sketch = topk.New(topk.SketchParams{
			K:          cfg.TopCountries.K,
			WindowSize: cfg.TopCountries.WindowSize,
			Width:      cfg.TopCountries.Width,
			Depth:      cfg.TopCountries.Depth,
		})
		coreOpts = append(coreOpts, core.WithTopCountries(i.sketch))
	}

	i.app, err = core.NewApp(coreOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize core app: %w", err)
	}

	route(cfg, i.app)

	sched, err := i.setupScheduler(cfg)
	if err != nil {
		return err
	}
	i.scheduler = sched
	i.handler = i.preRouter()

	reload := func() error {
		return config.Reload(i.provider, i.logger)
	}
	i.server = server.NewServer(i.provider, i.handler, i.logger, reload)
	i.server.AddDaemon(sched)
	return nil
}

func (i *initializer) setupConfig() (*config.Config, error) {
	logger := i.logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.Load(i.configPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	i.provider = config.NewProvider(cfg)
	return cfg, nil
}

func setupDefaultRouter(name string) (router.Router, error) {
	switch name {
	case config.RouterHttprouter, "":
		return httprouter.New(), nil
	case config.RouterServeMux:
		return servemux.New(), nil
	default:
		return nil, fmt.Errorf("unknown router %q", name)
	}
}

// setupDefaultGeoIP builds the ipapi client behind a ristretto cache of
// successful lookups.
func (i *initializer) setupDefaultGeoIP(cfg config.GeoIP) (geoip.Lookup, error) {
	client, err := geoip.NewClient(geoip.Options{
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout.Duration,
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}, i.logger)
	if err != nil {
		return nil, err
	}

	c, err := ristretto.New[geoip.Info](cfg.CacheLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create geoip cache: %w", err)
	}

	return geoip.NewCached(client, c, cfg.CacheTTL.Duration, geoip.WithFlightTimeout(cfg.Timeout.Duration)), nil
}

// setupScheduler registers the periodic jobs: expiration sweeping, pruning
// of idle rate limit windows and the top countries window.
func (i *initializer) setupScheduler(cfg *config.Config) (*scheduler.Scheduler, error) {
	sched := scheduler.New(cfg.Scheduler.Interval.Duration, i.logger)

	sw := sweeper.New(i.app.Registry(), i.logger, sweeper.WithEvictionCounter(i.app.Metrics().SweeperEvictions))
	jobs := []scheduler.Job{
		sw.Job(cfg.Sweeper.Interval.Duration),
		pruneJob(i.app, cfg.RateLimit.Window.Duration),
	}
	if i.sketch != nil {
		jobs = append(jobs, i.sketch.Job(cfg.TopCountries.TickInterval.Duration))
	}

	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			return nil, fmt.Errorf("failed to setup scheduler: %w", err)
		}
	}
	return sched, nil
}

// preRouter wraps the router with the middlewares that run for every
// request, matched or not. The recorder must stay first.
func (i *initializer) preRouter() http.Handler {
	return router.NewChain(i.app.Router()).WithMiddleware(
		prerouter.NewRecorder(i.app).Execute,
		prerouter.NewRequestID().Execute,
		prerouter.NewRequestLog(i.app).Execute,
		prerouter.NewMetrics(i.app).Execute,
		prerouter.NewRateLimit(i.app).Execute,
	).Handler()
}

// newLogger returns a slog logger writing JSON through phuslu/log or
// plain text, at the configured level.
func newLogger(cfg config.Log) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level.Level}
	if cfg.Format == config.LogFormatText {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(phuslog.SlogNewJSONHandler(os.Stderr, opts))
}
