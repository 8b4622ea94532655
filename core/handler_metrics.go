package core

import (
	"net/http"
	"slices"
)

// MetricsHandler serves Prometheus metrics in the standard format
// Endpoint: GET /metrics
// Allowed: exact IPs in [metrics] allowed_ips, checked against RemoteAddr
func (a *App) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	cfg := a.Config().Metrics
	if !cfg.Activated {
		writeJsonError(w, errorNotFound)
		return
	}

	// proxy headers are caller controlled, only the peer address counts
	clientIP := remoteIP(r)
	if clientIP == "" || !slices.Contains(cfg.AllowedIPs, clientIP) {
		writeJsonError(w, errorNotFound)
		return
	}

	a.metricsHandler.ServeHTTP(w, r)
}
