package profiles

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fdg312/cut-sprint/internal/userctx"
)

// Handler содержит HTTP обработчики для профиля
type Handler struct {
	service *Service
}

// NewHandler создаёт новый handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet обрабатывает GET /v1/profile
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to get profile")
		return
	}

	h.sendJSON(w, http.StatusOK, profile)
}

// HandleUpdate обрабатывает PUT /v1/profile
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	profile, err := h.service.Update(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			h.sendError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": "))
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to update profile")
		return
	}

	h.sendJSON(w, http.StatusOK, profile)
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// ErrorResponse формат ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
