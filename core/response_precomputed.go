package core

import (
	"encoding/json"
	"net/http"
)

// Standard response codes
const (
	CodeErrorInvalidRequest     = "err_invalid_input"
	CodeErrorConflict           = "err_conflict"
	CodeErrorNotFound           = "err_not_found"
	CodeErrorCountryNotBlocked  = "err_country_not_blocked"
	CodeErrorTooManyRequests    = "err_too_many_requests"
	CodeErrorUpstreamFailure    = "err_upstream_failure"
	CodeErrorInvalidContentType = "err_invalid_content_type"
	CodeErrorRequestTooLarge    = "err_request_too_large"
	CodeErrorInternal           = "err_internal"
	CodeErrorFeatureDisabled    = "err_feature_disabled"
)

// precomputeBasicResponse builds the JSON body once, at init, so static
// responses are written as plain bytes.
func precomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

var (
	errorInvalidRequest     = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	errorConflict           = precomputeBasicResponse(http.StatusConflict, CodeErrorConflict, "Country is already blocked")
	errorNotFound           = precomputeBasicResponse(http.StatusNotFound, CodeErrorNotFound, "Requested resource not found")
	errorCountryNotBlocked  = precomputeBasicResponse(http.StatusNotFound, CodeErrorCountryNotBlocked, "Country is not blocked")
	errorTooManyRequests    = precomputeBasicResponse(http.StatusTooManyRequests, CodeErrorTooManyRequests, "Too many requests, please try again later")
	errorUpstreamFailure    = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorUpstreamFailure, "IP geolocation lookup failed")
	errorInvalidContentType = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")
	errorRequestTooLarge    = precomputeBasicResponse(http.StatusRequestEntityTooLarge, CodeErrorRequestTooLarge, "Request body too large")
	errorInternal           = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorInternal, "Internal server error")
	errorFeatureDisabled    = precomputeBasicResponse(http.StatusNotFound, CodeErrorFeatureDisabled, "This feature is not enabled")
)

// writeJsonError writes a precomputed JSON error response
func writeJsonError(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	_, _ = w.Write(resp.body)
}
