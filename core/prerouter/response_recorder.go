package prerouter

import (
	"net/http"

	"github.com/caasmo/countryblock/core"
)

type Recorder struct {
	app *core.App
}

func NewRecorder(app *core.App) *Recorder {
	return &Recorder{
		app: app,
	}
}

// Execute installs the shared core.ResponseRecorder. It must wrap every
// other prerouter middleware.
func (r *Recorder) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(core.NewResponseRecorder(w), req)
	})
}
