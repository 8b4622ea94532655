package prerouter

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/caasmo/countryblock/core"
)

const logMessage = "http_request"

// cutStr limits string length by adding ellipsis if needed
func cutStr(str string, max int) string {
	if max > 0 && len(str) > max {
		return str[:max] + "..."
	}
	return str
}

var logType = slog.String("type", "request")

// RequestLog is middleware that logs HTTP request details
type RequestLog struct {
	app *core.App
}

// NewRequestLog creates a new request logging middleware instance
func NewRequestLog(app *core.App) *RequestLog {
	return &RequestLog{
		app: app,
	}
}

// Execute wraps the next handler with request logging. It reads the status
// from the shared core.ResponseRecorder and wraps the writer itself when
// that is missing.
func (r *RequestLog) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		cfg := r.app.Config().Log.Request
		if !cfg.Activated {
			next.ServeHTTP(w, req)
			return
		}

		rec, ok := w.(*core.ResponseRecorder)
		if !ok {
			rec = core.NewResponseRecorder(w)
		}

		next.ServeHTTP(rec, req)

		limits := cfg.Limits
		attrs := make([]any, 0, 12)
		attrs = append(attrs, logType)
		attrs = append(attrs, slog.String("method", strings.ToUpper(req.Method)))
		attrs = append(attrs, slog.String("uri", cutStr(req.URL.RequestURI(), limits.URILength)))
		attrs = append(attrs, slog.Int("status", rec.Status))
		attrs = append(attrs, slog.String("duration", rec.Duration().String()))
		attrs = append(attrs, slog.String("remote_ip", cutStr(r.app.ClientIP(req), limits.RemoteIPLength)))
		attrs = append(attrs, slog.String("user_agent", cutStr(req.UserAgent(), limits.UserAgentLength)))
		attrs = append(attrs, slog.String("referer", cutStr(req.Referer(), limits.RefererLength)))
		attrs = append(attrs, slog.String("proto", req.Proto))
		attrs = append(attrs, slog.Int64("bytes", rec.BytesWritten))
		attrs = append(attrs, slog.String("request_id", core.RequestID(req.Context())))

		r.app.Logger().Info(logMessage, attrs...)
	})
}
