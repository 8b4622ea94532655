package prerouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/caasmo/countryblock/config"
	"github.com/caasmo/countryblock/core"
	"github.com/caasmo/countryblock/geoip"
	"github.com/caasmo/countryblock/ratelimit"
	"github.com/caasmo/countryblock/router/servemux"
)

// memoryHandler writes JSON records to an in-memory buffer and allows for
// easy inspection of the last logged record.
type memoryHandler struct {
	b *bytes.Buffer
	h slog.Handler
}

func newMemoryHandler(b *bytes.Buffer) *memoryHandler {
	return &memoryHandler{
		b: b,
		h: slog.NewJSONHandler(b, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
}

func (h *memoryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *memoryHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.h.Handle(ctx, r)
}

func (h *memoryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &memoryHandler{b: h.b, h: h.h.WithAttrs(attrs)}
}

func (h *memoryHandler) WithGroup(name string) slog.Handler {
	return &memoryHandler{b: h.b, h: h.h.WithGroup(name)}
}

// LastRecord parses the last line of the buffer.
func (h *memoryHandler) LastRecord() (map[string]interface{}, error) {
	lines := bytes.Split(bytes.TrimSpace(h.b.Bytes()), []byte("\n"))
	var record map[string]interface{}
	err := json.Unmarshal(lines[len(lines)-1], &record)
	return record, err
}

type testApp struct {
	cfg     func(*config.Config)
	logger  *slog.Logger
	limiter *ratelimit.Limiter
}

func newTestApp(t *testing.T, o testApp) *core.App {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.Server.ClientIpProxyHeader = "X-Forwarded-For"
	if o.cfg != nil {
		o.cfg(cfg)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := []core.Option{
		core.WithConfigProvider(config.NewProvider(cfg)),
		core.WithLogger(o.logger),
		core.WithRouter(servemux.New()),
		core.WithGeoIP(geoip.LookupFunc(func(ctx context.Context, ip string) (geoip.Info, error) {
			return geoip.Info{IP: ip, CountryCode: "US"}, nil
		})),
	}
	if o.limiter != nil {
		opts = append(opts, core.WithLimiter(o.limiter))
	}

	app, err := core.NewApp(opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

// fixedClock returns a clock frozen at a fixed instant.
func fixedClock() func() time.Time {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}
