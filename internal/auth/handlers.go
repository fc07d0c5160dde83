package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleDevAuth handles POST /v1/auth/dev
func (h *Handlers) HandleDevAuth(w http.ResponseWriter, r *http.Request) {
	var req DevAuthRequest
	if r.Body != nil {
		// пустое тело допустимо
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeErrorResponse(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
			return
		}
	}

	resp, err := h.service.SignInDev(req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDevAuthDisabled):
			writeErrorResponse(w, http.StatusNotFound, "not_found", "Dev auth is disabled")
		case errors.Is(err, ErrInvalidUserID):
			writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "user_id is too long")
		default:
			writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to issue token")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
