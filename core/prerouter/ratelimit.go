package prerouter

import (
	"net/http"
	"strconv"

	"github.com/caasmo/countryblock/core"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

// RateLimit admits at most the configured number of requests per client
// and window, partitioned by client IP. It runs before the router so 404s
// count too.
type RateLimit struct {
	app *core.App
}

func NewRateLimit(app *core.App) *RateLimit {
	return &RateLimit{
		app: app,
	}
}

func (m *RateLimit) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.app.Config().RateLimit.Activated {
			next.ServeHTTP(w, r)
			return
		}

		key := m.app.ClientIP(r)
		d := m.app.Limiter().Allow(key)

		w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(d.Limit))
		w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))

		if !d.Allowed {
			m.app.Metrics().RateLimitRejected.Inc()
			m.app.Logger().Debug("rate limited",
				"client", key,
				"retry_after", d.RetryAfter,
				"request_id", core.RequestID(r.Context()),
			)
			core.WriteTooManyRequests(w, d.RetryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}
