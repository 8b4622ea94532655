package prerouter

import (
	"net/http"
	"strconv"

	"github.com/caasmo/countryblock/core"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricName          = "http_server_requests_total"
	metricHelp          = "Total number of HTTP requests handled by the server, labeled by status code."
	statusCodeLabelName = "code"
)

// Metrics counts handled requests by status code.
type Metrics struct {
	app           *core.App
	requestsTotal *prometheus.CounterVec
}

// NewMetrics registers the request counter on the app's registry. It panics
// if a collector with the same name is already registered there.
func NewMetrics(app *core.App) *Metrics {
	counterVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricName,
			Help: metricHelp,
		},
		[]string{statusCodeLabelName},
	)
	app.Metrics().Registry.MustRegister(counterVec)

	return &Metrics{
		app:           app,
		requestsTotal: counterVec,
	}
}

func (m *Metrics) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.app.Config().Metrics.Activated {
			next.ServeHTTP(w, r)
			return
		}

		rec, ok := w.(*core.ResponseRecorder)
		if !ok {
			m.app.Logger().Error("metrics middleware: expected core.ResponseRecorder",
				"got", w,
			)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(rec, r)

		m.requestsTotal.WithLabelValues(strconv.Itoa(rec.Status)).Inc()
	})
}
