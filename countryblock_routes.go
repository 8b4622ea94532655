package countryblock

import (
	"net/http"

	"github.com/caasmo/countryblock/config"
	"github.com/caasmo/countryblock/core"
)

func route(cfg *config.Config, ap *core.App) {
	routes := []struct {
		endpoint string
		handler  http.HandlerFunc
	}{
		{cfg.Endpoints.BlockCountry, ap.BlockCountryHandler},
		{cfg.Endpoints.UnblockCountry, ap.UnblockCountryHandler},
		{cfg.Endpoints.ListBlocked, ap.ListBlockedHandler},
		{cfg.Endpoints.TemporalBlock, ap.TemporalBlockHandler},
		{cfg.Endpoints.ListAttempts, ap.ListAttemptsHandler},
		{cfg.Endpoints.CheckBlock, ap.CheckBlockHandler},
		{cfg.Endpoints.LookupIp, ap.LookupIpHandler},
		{cfg.Endpoints.LookupIpAddr, ap.LookupIpHandler},
		{cfg.Endpoints.TopCountries, ap.TopCountriesHandler},
	}

	for _, rt := range routes {
		ap.Router().Handle(rt.endpoint, rt.handler)
	}

	// deactivating on reload keeps the route, the handler then answers 404
	if cfg.Metrics.Activated {
		ap.Router().Handle(http.MethodGet+" "+cfg.Metrics.Endpoint, http.HandlerFunc(ap.MetricsHandler))
	}
}
