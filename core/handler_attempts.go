package core

import (
	"net/http"
	"net/netip"

	"github.com/caasmo/countryblock/attemptlog"
	"github.com/caasmo/countryblock/metrics"
)

type blockCheck struct {
	IP          string `json:"ipAddress"`
	CountryCode string `json:"countryCode"`
	IsBlocked   bool   `json:"isBlocked"`
}

// CheckBlockHandler resolves the caller's country and reports whether it is
// blocked. Every successful check is appended to the attempt log.
// Endpoint: GET /api/countries/ip/check-block
func (a *App) CheckBlockHandler(w http.ResponseWriter, r *http.Request) {
	addr, err := netip.ParseAddr(a.ClientIP(r))
	if err != nil {
		writeValidationError(w, FieldError{Field: "ip", Reason: "caller address is not a valid IP"})
		return
	}
	ip := addr.String()

	info, err := a.geo.Lookup(r.Context(), ip)
	if err != nil {
		a.metrics.UpstreamFailures.Inc()
		a.metrics.Checks.WithLabelValues(metrics.ResultError).Inc()
		a.logger.Error("block check lookup failed", "ip", ip, "request_id", RequestID(r.Context()), "error", err)
		writeJsonError(w, errorUpstreamFailure)
		return
	}

	code := info.CountryCode
	blocked := a.registry.Contains(code)

	a.attempts.Append(attemptlog.Entry{
		IP:          ip,
		CountryCode: code,
		Blocked:     blocked,
		Timestamp:   a.registry.Now(),
		UserAgent:   r.UserAgent(),
	})

	result := metrics.ResultAllowed
	if blocked {
		result = metrics.ResultBlocked
		if a.topCountries != nil {
			a.topCountries.Incr(code)
		}
	}
	a.metrics.Checks.WithLabelValues(result).Inc()

	writeOkWithData(w, CodeOkBlockCheck, "Block check completed", blockCheck{
		IP:          ip,
		CountryCode: code,
		IsBlocked:   blocked,
	})
}

// ListAttemptsHandler returns a page of the attempt log, newest first
// unless sortBy says otherwise.
// Endpoint: GET /api/countries/logs/blocked-attempts
// Query: searchTerm, sortBy (timestamp|countrycode|ipaddress),
// sortDescending, pageNumber, pageSize
func (a *App) ListAttemptsHandler(w http.ResponseWriter, r *http.Request) {
	params, errs := listParams(r)
	if len(errs) > 0 {
		writeValidationError(w, errs...)
		return
	}

	writeOkWithData(w, CodeOkAttemptsList, "Blocked attempts", a.attempts.Query(params))
}
