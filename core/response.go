package core

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Codes of dynamic responses, the ones carrying data.
const (
	CodeOkCountryBlocked         = "ok_country_blocked"
	CodeOkCountryTemporalBlocked = "ok_country_temporal_blocked"
	CodeOkCountryUnblocked       = "ok_country_unblocked"
	CodeOkBlockedList            = "ok_blocked_list"
	CodeOkAttemptsList           = "ok_attempts_list"
	CodeOkBlockCheck             = "ok_block_check"
	CodeOkIpLookup               = "ok_ip_lookup"
	CodeOkTopCountries           = "ok_top_countries"
	CodeErrorValidation          = "err_validation"
)

type jsonResponse struct {
	status int
	body   []byte
}

// JsonBasic contains the basic response fields. All responses must have them
type JsonBasic struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JsonWithData is used for structured JSON responses with data
type JsonWithData struct {
	JsonBasic
	Data interface{} `json:"data,omitempty"`
}

// writeJsonWithData writes a structured JSON response with the provided data
func writeJsonWithData(w http.ResponseWriter, resp JsonWithData) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.Status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeOkWithData(w http.ResponseWriter, code, message string, data interface{}) {
	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{Status: http.StatusOK, Code: code, Message: message},
		Data:      data,
	})
}

// FieldError is one offending request field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// writeValidationError answers 400 listing every offending field.
func writeValidationError(w http.ResponseWriter, fields ...FieldError) {
	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusBadRequest,
			Code:    CodeErrorValidation,
			Message: "One or more validation errors occurred",
		},
		Data: map[string][]FieldError{"errors": fields},
	})
}

// WriteTooManyRequests answers 429 with a Retry-After header rounded up to
// whole seconds.
func WriteTooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int64((retryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
	writeJsonError(w, errorTooManyRequests)
}
