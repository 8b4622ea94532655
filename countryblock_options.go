package countryblock

import (
	"context"
	"log/slog"
	"time"

	"github.com/caasmo/countryblock/core"
	"github.com/caasmo/countryblock/geoip"
	"github.com/caasmo/countryblock/scheduler"
)

type Option func(*initializer)

// WithLogger replaces the logger built from the [log] section.
func WithLogger(logger *slog.Logger) Option {
	return func(i *initializer) {
		i.logger = logger
	}
}

// WithGeoIP replaces the cached ipapi client.
func WithGeoIP(lookup geoip.Lookup) Option {
	return func(i *initializer) {
		i.geo = lookup
	}
}

// pruneJob drops idle rate limit windows once per window.
func pruneJob(app *core.App, window time.Duration) scheduler.Job {
	return scheduler.Job{
		Name:     "ratelimit_prune",
		Interval: window,
		Run: func(context.Context) error {
			if n := app.Limiter().Prune(); n > 0 {
				app.Logger().Debug("pruned rate limit windows", "count", n)
			}
			return nil
		},
	}
}
