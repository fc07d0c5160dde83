package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fdg312/cut-sprint/internal/userctx"
)

// Handler handles HTTP requests for AI meal analysis.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleAnalyzeMeal handles POST /v1/analysis/meal
func (h *Handler) HandleAnalyzeMeal(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	result, err := h.service.AnalyzeMeal(r.Context(), userID, req)
	if err != nil {
		var quota *QuotaExceededError
		switch {
		case errors.As(err, &quota):
			writeQuotaExceeded(w, quota)
		case errors.Is(err, ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": "))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleUsage handles GET /v1/analysis/usage
func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	usage, err := h.service.Usage(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, usage)
}

// HandleHistory handles GET /v1/analysis/history?limit=
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be an integer")
			return
		}
		limit = v
	}

	history, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func writeQuotaExceeded(w http.ResponseWriter, err *QuotaExceededError) {
	writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
		"error": map[string]interface{}{
			"code":          "quota_exceeded",
			"message":       "Daily analysis limit reached",
			"current_usage": err.CurrentUsage,
			"daily_limit":   err.DailyLimit,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
