package core

import (
	"errors"
	"net/http"

	"github.com/caasmo/countryblock/registry"
)

type blockRequest struct {
	Code string `json:"code"`
}

type temporalBlockRequest struct {
	Code            string `json:"code"`
	DurationMinutes int    `json:"durationMinutes"`
}

// BlockCountryHandler blocks a country permanently.
// Endpoint: POST /api/countries/block
// Allowed Mimetype: application/json
func (a *App) BlockCountryHandler(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if !a.decodeJsonBody(w, r, &req) {
		return
	}

	entry, err := a.registry.Add(req.Code, registry.Permanent, 0)
	if err != nil {
		a.writeRegistryError(w, err)
		return
	}

	a.logger.Info("country blocked", "country_code", entry.Code, "mode", entry.Mode)
	writeOkWithData(w, CodeOkCountryBlocked, "Country blocked", entry)
}

// TemporalBlockHandler blocks a country for durationMinutes, 1 to 1440.
// Endpoint: POST /api/countries/temporal-block
// Allowed Mimetype: application/json
func (a *App) TemporalBlockHandler(w http.ResponseWriter, r *http.Request) {
	var req temporalBlockRequest
	if !a.decodeJsonBody(w, r, &req) {
		return
	}

	entry, err := a.registry.Add(req.Code, registry.Temporary, req.DurationMinutes)
	if err != nil {
		a.writeRegistryError(w, err)
		return
	}

	a.logger.Info("country blocked",
		"country_code", entry.Code,
		"mode", entry.Mode,
		"expires_at", entry.ExpiresAt,
	)
	writeOkWithData(w, CodeOkCountryTemporalBlocked, "Country temporarily blocked", entry)
}

// UnblockCountryHandler removes a block, permanent or temporary.
// Endpoint: DELETE /api/countries/block/{code}
func (a *App) UnblockCountryHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := a.registry.Remove(r.PathValue("code"))
	if err != nil {
		a.writeRegistryError(w, err)
		return
	}

	a.logger.Info("country unblocked", "country_code", entry.Code)
	writeOkWithData(w, CodeOkCountryUnblocked, "Country unblocked", entry)
}

// ListBlockedHandler returns a page of blocked countries.
// Endpoint: GET /api/countries/blocked
// Query: searchTerm, sortBy (code|duration|expiration), sortDescending,
// pageNumber, pageSize
func (a *App) ListBlockedHandler(w http.ResponseWriter, r *http.Request) {
	params, errs := listParams(r)
	if len(errs) > 0 {
		writeValidationError(w, errs...)
		return
	}

	writeOkWithData(w, CodeOkBlockedList, "Blocked countries", a.registry.Query(params))
}

func (a *App) writeRegistryError(w http.ResponseWriter, err error) {
	var verr *registry.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, FieldError{Field: verr.Field, Reason: verr.Reason})
	case errors.Is(err, registry.ErrConflict):
		writeJsonError(w, errorConflict)
	case errors.Is(err, registry.ErrNotFound):
		writeJsonError(w, errorCountryNotBlocked)
	default:
		a.logger.Error("registry operation failed", "error", err)
		writeJsonError(w, errorInternal)
	}
}
