package core

import (
	"errors"
	"mime"
	"net/http"
)

// Validator checks request properties common to several handlers.
type Validator interface {
	// ContentType checks if the request's Content-Type matches the allowed type
	ContentType(r *http.Request, allowedType string) (error, jsonResponse)
}

// DefaultValidator implements the Validator interface
type DefaultValidator struct{}

func NewValidator() Validator {
	return &DefaultValidator{}
}

var errInvalidContentType = errors.New("invalid content type")

// ContentType accepts the allowed media type with any parameters, e.g.
// "application/json; charset=utf-8". Anything else gets 415.
func (v *DefaultValidator) ContentType(r *http.Request, allowedType string) (error, jsonResponse) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return errInvalidContentType, errorInvalidContentType
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != allowedType {
		return errInvalidContentType, errorInvalidContentType
	}

	return nil, jsonResponse{}
}
