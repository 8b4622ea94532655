package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caasmo/countryblock/config"
	"github.com/caasmo/countryblock/registry"
)

func TestMetricsHandler(t *testing.T) {
	testCases := []struct {
		name           string
		config         config.Metrics
		remoteAddr     string
		forwarded      string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "metrics disabled",
			config:         config.Metrics{Activated: false, AllowedIPs: []string{"127.0.0.1"}},
			remoteAddr:     "127.0.0.1:12345",
			expectedStatus: http.StatusNotFound,
			expectedBody:   CodeErrorNotFound,
		},
		{
			name:           "ip not allowed",
			config:         config.Metrics{Activated: true, AllowedIPs: []string{"127.0.0.1"}},
			remoteAddr:     "192.168.1.1:12345",
			expectedStatus: http.StatusNotFound,
			expectedBody:   CodeErrorNotFound,
		},
		{
			name:           "forwarded header is ignored",
			config:         config.Metrics{Activated: true, AllowedIPs: []string{"127.0.0.1"}},
			remoteAddr:     "192.168.1.1:12345",
			forwarded:      "127.0.0.1",
			expectedStatus: http.StatusNotFound,
			expectedBody:   CodeErrorNotFound,
		},
		{
			name:           "allowed ipv4",
			config:         config.Metrics{Activated: true, AllowedIPs: []string{"127.0.0.1"}},
			remoteAddr:     "127.0.0.1:12345",
			expectedStatus: http.StatusOK,
			expectedBody:   "countryblock_blocked_countries 1",
		},
		{
			name:           "allowed ipv6",
			config:         config.Metrics{Activated: true, AllowedIPs: []string{"::1"}},
			remoteAddr:     "[::1]:12345",
			expectedStatus: http.StatusOK,
			expectedBody:   "countryblock_attempts 0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newTestApp(t, testAppOpts{
				cfg: func(c *config.Config) {
					tc.config.Endpoint = "/metrics"
					c.Metrics = tc.config
				},
			})
			if _, err := app.Registry().Add("EG", registry.Permanent, 0); err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			rr := httptest.NewRecorder()
			app.MetricsHandler(rr, req)

			if rr.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tc.expectedBody) {
				t.Errorf("expected body to contain %q, got %q", tc.expectedBody, rr.Body.String())
			}
		})
	}
}
