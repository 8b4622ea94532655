package router

import (
	"net/http"
	"strings"
)

// Router registers handlers for "METHOD /path" patterns. Path parameters
// use the {name} syntax and are read by handlers with Request.PathValue,
// whatever the implementation.
type Router interface {
	Handle(pattern string, handler http.Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// SplitPattern splits "METHOD /path" into its parts. A pattern without a
// method matches GET.
func SplitPattern(pattern string) (method, path string) {
	method, path, ok := strings.Cut(strings.TrimSpace(pattern), " ")
	if !ok {
		return http.MethodGet, method
	}
	return method, strings.TrimSpace(path)
}
