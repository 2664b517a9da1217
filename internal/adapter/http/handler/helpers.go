package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/tradeledger/internal/adapter/http/dto"
	"github.com/iho/tradeledger/internal/adapter/http/middleware"
	"github.com/iho/tradeledger/internal/domain"
	"github.com/iho/tradeledger/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status its kind maps to. Details of
// server-side failures stay in the logs.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		writeError(w, status, message, "")
		return
	}
	writeError(w, status, message, err.Error())
}

// mapDomainError maps errors to HTTP status codes.
func mapDomainError(err error) int {
	switch usecase.Classify(err) {
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindRejected:
		if errors.Is(err, domain.ErrValidation) {
			return http.StatusBadRequest
		}
		return http.StatusConflict
	case usecase.KindInfrastructure:
		return http.StatusServiceUnavailable
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// decodeRequest decodes and validates a JSON body into req.
func decodeRequest(r *http.Request, req any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return err
	}
	return dto.Validate(req)
}

// authorize checks that the caller may act on accountID.
func authorize(r *http.Request, accountID string) error {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return domain.ErrUnauthorized
	}
	if !identity.CanAccess(accountID) {
		return domain.ErrInsufficientRole
	}
	return nil
}
