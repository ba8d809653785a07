// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hatch-ir/hatch/internal/model"
	"github.com/hatch-ir/hatch/internal/repository"
	"github.com/hatch-ir/hatch/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain errors to HTTP statuses. Validation errors
// come through as plain fmt.Errorf values and default to 400.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "قبلاً ثبت‌نام کردی!")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrCodeExpired):
		writeError(w, http.StatusUnauthorized, "کد اشتباهه")
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
