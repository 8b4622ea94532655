package servemux

import (
	"net/http"

	"github.com/caasmo/countryblock/router"
)

// ServeMuxRouter implements router.Router on net/http ServeMux. Patterns
// already use the "METHOD /path/{param}" syntax the mux understands.
type ServeMuxRouter struct {
	*http.ServeMux
}

func New() *ServeMuxRouter {
	return &ServeMuxRouter{ServeMux: http.NewServeMux()}
}

var _ router.Router = (*ServeMuxRouter)(nil)
