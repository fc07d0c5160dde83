package weights

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/userctx"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for weigh-ins.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleAdd handles POST /v1/weights
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AddWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	weight, err := h.service.Add(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, weight)
}

// HandleList handles GET /v1/weights?from=&to=&flag=
// По умолчанию берутся последние 30 дней.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}

	resp, err := h.service.List(r.Context(), userID, from, to, r.URL.Query().Get("flag"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /v1/weights/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid weight id")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleTrend handles GET /v1/weights/trend?days=
func (h *Handler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	days, ok := intParam(w, r, "days")
	if !ok {
		return
	}

	resp, err := h.service.Trend(r.Context(), userID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleMovingAverage handles GET /v1/weights/moving-average?days=
func (h *Handler) HandleMovingAverage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	days, ok := intParam(w, r, "days")
	if !ok {
		return
	}

	resp, err := h.service.MovingAverage(r.Context(), userID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleStats handles GET /v1/weights/stats?days=
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	days, ok := intParam(w, r, "days")
	if !ok {
		return
	}

	resp, err := h.service.Stats(r.Context(), userID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePredictions handles GET /v1/weights/predictions?weeks=
func (h *Handler) HandlePredictions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	weeks, ok := intParam(w, r, "weeks")
	if !ok {
		return
	}

	resp, err := h.service.Predictions(r.Context(), userID, weeks)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleChange handles GET /v1/weights/change?from=&to=
func (h *Handler) HandleChange(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Change(r.Context(), userID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleReminder handles GET /v1/weights/reminder
func (h *Handler) HandleReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Reminder(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) rangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	today := h.service.today()

	to, err := dates.ParseOr(r.URL.Query().Get("to"), today)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return time.Time{}, time.Time{}, false
	}
	from, err := dates.ParseOr(r.URL.Query().Get("from"), to.AddDate(0, 0, -DefaultWindowDays))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	}
	return userID, ok
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": "))
	case errors.Is(err, ErrWeightNotFound):
		writeError(w, http.StatusNotFound, "weight_not_found", "Weight entry not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
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
