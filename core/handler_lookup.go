package core

import (
	"net/http"
	"net/netip"
)

// LookupIpHandler returns the geolocation record of an IP, the caller's
// own when no {ip} is given.
// Endpoint: GET /api/countries/ip/lookup and GET /api/countries/ip/lookup/{ip}
func (a *App) LookupIpHandler(w http.ResponseWriter, r *http.Request) {
	ip := r.PathValue("ip")
	if ip == "" {
		ip = a.ClientIP(r)
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		writeValidationError(w, FieldError{Field: "ip", Reason: "must be a valid IPv4 or IPv6 address"})
		return
	}

	info, err := a.geo.Lookup(r.Context(), addr.String())
	if err != nil {
		a.metrics.UpstreamFailures.Inc()
		a.logger.Error("ip lookup failed", "ip", ip, "request_id", RequestID(r.Context()), "error", err)
		writeJsonError(w, errorUpstreamFailure)
		return
	}

	writeOkWithData(w, CodeOkIpLookup, "IP lookup completed", info)
}

// TopCountriesHandler lists the countries producing the most blocked
// attempts in the recent window.
// Endpoint: GET /api/countries/logs/top-countries
func (a *App) TopCountriesHandler(w http.ResponseWriter, r *http.Request) {
	if a.topCountries == nil || !a.Config().TopCountries.Activated {
		writeJsonError(w, errorFeatureDisabled)
		return
	}

	writeOkWithData(w, CodeOkTopCountries, "Top blocked countries", a.topCountries.Top())
}
