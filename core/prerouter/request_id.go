package prerouter

import (
	"net/http"

	"github.com/caasmo/countryblock/core"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID tags every request with an id, echoed in the response header and
// carried in the request context for logging. An incoming id is reused only
// when it is a well formed UUID.
type RequestID struct{}

func NewRequestID() *RequestID {
	return &RequestID{}
}

func (m *RequestID) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(HeaderRequestID)
		if parsed, err := uuid.Parse(id); err == nil {
			id = parsed.String()
		} else {
			id = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, id)
		if rec, ok := w.(*core.ResponseRecorder); ok {
			rec.RequestID = id
		}

		next.ServeHTTP(w, req.WithContext(core.WithRequestID(req.Context(), id)))
	})
}
