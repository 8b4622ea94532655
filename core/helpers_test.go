package core

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/caasmo/countryblock/config"
	"github.com/caasmo/countryblock/geoip"
	"github.com/caasmo/countryblock/registry"
	"github.com/caasmo/countryblock/router/servemux"
	"github.com/caasmo/countryblock/topk"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// countryLookup resolves IPs from a fixed table; unknown IPs fail.
func countryLookup(table map[string]string) geoip.LookupFunc {
	return func(ctx context.Context, ip string) (geoip.Info, error) {
		code, ok := table[ip]
		if !ok {
			return geoip.Info{}, geoip.ErrUpstream
		}
		return geoip.Info{IP: ip, CountryCode: code}, nil
	}
}

type testAppOpts struct {
	lookup geoip.Lookup
	cfg    func(*config.Config)
	sketch *topk.CountrySketch
}

func newTestApp(t *testing.T, o testAppOpts) (*App, *fakeClock) {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.Server.ClientIpProxyHeader = "X-Forwarded-For"
	if o.cfg != nil {
		o.cfg(cfg)
	}
	if o.lookup == nil {
		o.lookup = countryLookup(nil)
	}
	clock := &fakeClock{now: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}

	opts := []Option{
		WithConfigProvider(config.NewProvider(cfg)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRouter(servemux.New()),
		WithGeoIP(o.lookup),
		WithRegistry(registry.New(registry.WithClock(clock.Now))),
	}
	if o.sketch != nil {
		opts = append(opts, WithTopCountries(o.sketch))
	}

	app, err := NewApp(opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app, clock
}

type envelope struct {
	Status  int             `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a JSON envelope: %v (body %q)", err, rr.Body.String())
	}
	if env.Status != rr.Code {
		t.Errorf("envelope status %d differs from HTTP status %d", env.Status, rr.Code)
	}
	return env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode data %s: %v", env.Data, err)
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// countryLookupSpy records that it was called and always fails.
func countryLookupSpy(called *bool) geoip.LookupFunc {
	return func(ctx context.Context, ip string) (geoip.Info, error) {
		*called = true
		return geoip.Info{}, geoip.ErrUpstream
	}
}
