package httprouter

import (
	"net/http"
	"strings"

	"github.com/caasmo/countryblock/router"
	jshttprouter "github.com/julienschmidt/httprouter"
)

// Router implements router.Router on julienschmidt/httprouter.
type Router struct {
	rt *jshttprouter.Router
}

func New() *Router {
	return &Router{rt: jshttprouter.New()}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.rt.ServeHTTP(w, req)
}

// Handle registers handler for a "METHOD /path/{param}" pattern. Params are
// copied into the request so handlers read them with PathValue.
func (r *Router) Handle(pattern string, handler http.Handler) {
	method, path := router.SplitPattern(pattern)
	r.rt.Handle(method, convertPath(path), func(w http.ResponseWriter, req *http.Request, ps jshttprouter.Params) {
		for _, p := range ps {
			req.SetPathValue(p.Key, p.Value)
		}
		handler.ServeHTTP(w, req)
	})
}

// convertPath rewrites {name} segments to :name and {name...} to *name.
func convertPath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if len(seg) < 3 || seg[0] != '{' || seg[len(seg)-1] != '}' {
			continue
		}
		name := seg[1 : len(seg)-1]
		if rest, ok := strings.CutSuffix(name, "..."); ok {
			segments[i] = "*" + rest
			continue
		}
		segments[i] = ":" + name
	}
	return strings.Join(segments, "/")
}

var _ router.Router = (*Router)(nil)
