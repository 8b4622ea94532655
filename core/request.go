package core

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey int

const requestIDKey contextKey = iota

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the id set by the request id middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ClientIP returns the caller address. When a proxy header is configured
// and present its last entry wins, that is the peer the trusted proxy saw.
// Earlier entries are client supplied. Otherwise the host of RemoteAddr is
// used. It returns "" when neither yields a value.
func (a *App) ClientIP(r *http.Request) string {
	return clientIP(r, a.Config().Server.ClientIpProxyHeader)
}

func clientIP(r *http.Request, proxyHeader string) string {
	if proxyHeader != "" {
		if forwarded := r.Header.Get(proxyHeader); forwarded != "" {
			last := forwarded
			if i := strings.LastIndexByte(forwarded, ','); i >= 0 {
				last = forwarded[i+1:]
			}
			if ip := strings.TrimSpace(last); ip != "" {
				return ip
			}
		}
	}
	return remoteIP(r)
}

// remoteIP is the host part of RemoteAddr, never trusting headers.
func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return ip
}
