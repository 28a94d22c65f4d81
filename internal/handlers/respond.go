package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/eligibility"
)

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps core error kinds to HTTP statuses. Anything unrecognized is
// logged and reported as a 500 without leaking internals.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validation   *apperr.ValidationError
		insufficient *apperr.InsufficientCreditsError
		state        *apperr.StateError
		provider     *apperr.ProviderError
		license      *eligibility.LicenseRequiredError
		fieldErrs    validator.ValidationErrors
	)
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
	case errors.Is(err, apperr.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "validation failed", "field": fieldErrs[0].Field(),
		})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": validation.Error(), "field": validation.Field,
		})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"error":     "insufficient credits",
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
	case errors.As(err, &license):
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": license.Error(), "category": license.Category,
		})
	case errors.As(err, &state):
		writeJSON(w, http.StatusConflict, map[string]string{"error": state.Error()})
	case errors.As(err, &provider):
		logger.Error("payment provider", "op", provider.Op, "error", provider.Err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment provider unavailable"})
	default:
		logger.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
