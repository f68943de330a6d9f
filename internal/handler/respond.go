package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/shopcore/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// respondError переводит типизированные исходы доменного слоя в HTTP-статусы.
// Все, что не распознано — 500 без деталей (внутренности не светим).
func respondError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError

	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrOptionNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.As(err, &stockErr):
		writeError(w, http.StatusConflict, stockErr.Error())

	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrCategoryExists):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, domain.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func forbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "Access denied. You are not an admin.")
}
