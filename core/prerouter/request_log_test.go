package prerouter

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caasmo/countryblock/config"
)

func TestRequestLog_SuccessfulRequest(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	app := newTestApp(t, testApp{logger: slog.New(newMemoryHandler(logBuffer))})

	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("taken"))
	})
	handlerChain := NewRecorder(app).Execute(NewRequestID().Execute(NewRequestLog(app).Execute(finalHandler)))

	req := httptest.NewRequest("POST", "/api/countries/block?x=1", nil)
	req.RemoteAddr = "192.0.2.1:12345"
	rr := httptest.NewRecorder()
	handlerChain.ServeHTTP(rr, req)

	if logBuffer.Len() == 0 {
		t.Fatal("Expected a log entry, but none was written")
	}
	logRecord, err := newMemoryHandler(logBuffer).LastRecord()
	if err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	if logRecord["msg"] != "http_request" {
		t.Errorf("Expected log message 'http_request', got '%v'", logRecord["msg"])
	}
	if logRecord["method"] != "POST" || logRecord["uri"] != "/api/countries/block?x=1" {
		t.Errorf("unexpected method/uri: %v %v", logRecord["method"], logRecord["uri"])
	}
	if status, _ := logRecord["status"].(float64); status != http.StatusConflict {
		t.Errorf("Expected status %d, got %v", http.StatusConflict, logRecord["status"])
	}
	if bytesWritten, _ := logRecord["bytes"].(float64); bytesWritten != 5 {
		t.Errorf("Expected 5 bytes, got %v", logRecord["bytes"])
	}
	if ip, _ := logRecord["remote_ip"].(string); ip != "192.0.2.1" {
		t.Errorf("Expected remote_ip '192.0.2.1', got '%v'", logRecord["remote_ip"])
	}
	if id, _ := logRecord["request_id"].(string); id == "" || id != rr.Header().Get(HeaderRequestID) {
		t.Errorf("request_id %q does not match response header %q", id, rr.Header().Get(HeaderRequestID))
	}
}

func TestRequestLog_Deactivated(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	app := newTestApp(t, testApp{
		logger: slog.New(newMemoryHandler(logBuffer)),
		cfg:    func(c *config.Config) { c.Log.Request.Activated = false },
	})

	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handlerChain := NewRecorder(app).Execute(NewRequestLog(app).Execute(finalHandler))
	handlerChain.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if logBuffer.Len() > 0 {
		t.Errorf("Expected no log output, but got: %s", logBuffer.String())
	}
}

func TestRequestLog_FieldTruncation(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	app := newTestApp(t, testApp{
		logger: slog.New(newMemoryHandler(logBuffer)),
		cfg: func(c *config.Config) {
			c.Log.Request.Limits = config.LogRequestLimits{
				URILength:       10,
				UserAgentLength: 15,
				RefererLength:   12,
				RemoteIPLength:  8,
			}
		},
	})

	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handlerChain := NewRecorder(app).Execute(NewRequestLog(app).Execute(finalHandler))

	longString := strings.Repeat("a", 200)
	req := httptest.NewRequest("POST", "/"+longString, nil)
	req.Header.Set("User-Agent", "user-agent-"+longString)
	req.Header.Set("Referer", "referer-"+longString)
	req.Header.Set("X-Forwarded-For", "2001:db8:aaaa:bbbb::1")
	handlerChain.ServeHTTP(httptest.NewRecorder(), req)

	logRecord, err := newMemoryHandler(logBuffer).LastRecord()
	if err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	expected := map[string]string{
		"uri":        "/aaaaaaaaa...",
		"user_agent": "user-agent-aaaa...",
		"referer":    "referer-aaaa...",
		"remote_ip":  "2001:db8...",
	}
	for key, want := range expected {
		if got, _ := logRecord[key].(string); got != want {
			t.Errorf("Expected truncated field '%s' to be '%s', but got '%s'", key, want, got)
		}
	}
}

func TestRequestLog_InvalidRemoteIP(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	app := newTestApp(t, testApp{logger: slog.New(newMemoryHandler(logBuffer))})

	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handlerChain := NewRecorder(app).Execute(NewRequestLog(app).Execute(finalHandler))

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "invalid-ip-format"
	handlerChain.ServeHTTP(httptest.NewRecorder(), req)

	logRecord, _ := newMemoryHandler(logBuffer).LastRecord()
	if ip, _ := logRecord["remote_ip"].(string); ip != "invalid-ip-format" {
		t.Errorf("Expected remote_ip to be 'invalid-ip-format', got '%v'", ip)
	}
}

func TestRequestLog_MissingRecorder(t *testing.T) {
	logBuffer := new(bytes.Buffer)
	app := newTestApp(t, testApp{logger: slog.New(newMemoryHandler(logBuffer))})

	finalHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rr := httptest.NewRecorder()
	NewRequestLog(app).Execute(finalHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}
	logRecord, err := newMemoryHandler(logBuffer).LastRecord()
	if err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}
	if status, _ := logRecord["status"].(float64); status != http.StatusTeapot {
		t.Errorf("Expected status %d, got %v", http.StatusTeapot, logRecord["status"])
	}
}
