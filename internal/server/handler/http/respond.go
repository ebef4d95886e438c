package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/creatorhub/internal/service"
	"go.uber.org/zap"
)

// fieldError is one entry of a 422 detail array.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeInputError(w http.ResponseWriter, e *service.InputError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string][]fieldError{
		"detail": {{Loc: []string{"body", e.Field}, Msg: e.Reason, Type: "value_error"}},
	})
}

// decode reads a JSON request body into v, answering 422 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeInputError(w, &service.InputError{Field: "body", Reason: "invalid JSON body"})
		return false
	}
	return true
}

// fail maps service errors to responses. Errors it does not recognise are
// logged and reported as 500.
func fail(w http.ResponseWriter, log *zap.Logger, err error, forbidden string) {
	var inErr *service.InputError
	switch {
	case errors.As(err, &inErr):
		writeInputError(w, inErr)
	case errors.Is(err, service.ErrNotCreator):
		writeDetail(w, http.StatusForbidden, forbidden)
	case errors.Is(err, service.ErrProfileNotFound):
		writeDetail(w, http.StatusNotFound, "Creator profile not found")
	case errors.Is(err, service.ErrListingNotFound):
		writeDetail(w, http.StatusNotFound, "Service not found")
	case errors.Is(err, service.ErrProfileExists):
		writeDetail(w, http.StatusBadRequest, "Creator profile already exists")
	case errors.Is(err, service.ErrEmailTaken):
		writeDetail(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrUsernameTaken):
		writeDetail(w, http.StatusBadRequest, "Username already taken")
	default:
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}
