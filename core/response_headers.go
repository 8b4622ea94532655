package core

import (
	"net/http"
)

// HeadersJson are set on every JSON API response.
var HeadersJson = map[string]string{
	"Content-Type": "application/json; charset=utf-8",

	// browsers must not sniff a different content type
	"X-Content-Type-Options": "nosniff",

	// block lists change at any time, nothing may be cached
	"Cache-Control": "no-store, no-cache, must-revalidate",

	"X-Frame-Options": "DENY",

	// The response is never a document. frame-ancestors is the modern
	// form of X-Frame-Options.
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// setHeaders applies one or more sets of headers to the response writer.
// Headers from later maps will overwrite headers from earlier maps if keys conflict.
func setHeaders(w http.ResponseWriter, headers ...map[string]string) {
	for _, headerMap := range headers {
		for key, value := range headerMap {
			w.Header().Set(key, value)
		}
	}
}
