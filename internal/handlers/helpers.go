package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lojf/kidstrack/internal/services"
	"github.com/lojf/kidstrack/internal/storage"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON parses and validates a request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

// idParam reads a numeric chi URL parameter; 0 means absent/invalid.
func idParam(r *http.Request, name string) uint {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// writeDomainError maps the domain error vocabulary onto status codes:
// validation 422, state conflicts and duplicates and stale versions 409,
// missing rows 404.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTimeRange),
		errors.Is(err, services.ErrBlankContent),
		errors.Is(err, services.ErrContentTooLong),
		errors.Is(err, services.ErrInvalidDecision):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrInvalidRecordStatus),
		errors.Is(err, services.ErrDuplicateSession),
		errors.Is(err, services.ErrDuplicateAttendance),
		errors.Is(err, services.ErrDuplicateNote),
		errors.Is(err, storage.ErrStale):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
