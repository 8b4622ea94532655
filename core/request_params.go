package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/caasmo/countryblock/query"
)

const (
	MimeTypeJSON = "application/json"

	maxBodyBytes = 4 << 10
)

// listParams reads the list query parameters. Malformed values are reported
// per field; absent ones keep their zero value and are defaulted by
// query.Params.Normalize.
func listParams(r *http.Request) (query.Params, []FieldError) {
	q := r.URL.Query()
	p := query.Params{
		SearchTerm: q.Get("searchTerm"),
		SortBy:     q.Get("sortBy"),
	}

	var errs []FieldError
	if v := q.Get("sortDescending"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "sortDescending", Reason: "must be true or false"})
		}
		p.SortDescending = b
	}
	if v := q.Get("pageNumber"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "pageNumber", Reason: "must be an integer"})
		}
		p.PageNumber = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "pageSize", Reason: "must be an integer"})
		}
		p.PageSize = n
	}
	return p, errs
}

// decodeJsonBody checks the content type and decodes a size limited JSON
// body into dst. On failure the error response is already written.
func (a *App) decodeJsonBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err, resp := a.validator.ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJsonError(w, errorRequestTooLarge)
			return false
		}
		writeJsonError(w, errorInvalidRequest)
		return false
	}
	return true
}
