package meals

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/userctx"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the food diary.
type Handler struct {
	service *Service
}

// NewHandler creates a new meals handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCreate handles POST /v1/meals
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	meal, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, meal)
}

// HandleDuplicateYesterday handles POST /v1/meals/duplicate-yesterday
func (h *Handler) HandleDuplicateYesterday(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req DuplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}
	target, err := dates.ParseOr(req.TargetDate, h.service.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	resp, err := h.service.DuplicateYesterday(r.Context(), userID, target)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /v1/meals?date=YYYY-MM-DD
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	resp, err := h.service.List(r.Context(), userID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /v1/meals/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid meal id")
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDailySummary handles GET /v1/meals/summary/daily?date=
func (h *Handler) HandleDailySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	summary, err := h.service.DailySummary(r.Context(), userID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleWeeklySummary handles GET /v1/meals/summary/weekly?start=
func (h *Handler) HandleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	start, ok := h.dateParam(w, r, "start")
	if !ok {
		return
	}

	summary, err := h.service.WeeklySummary(r.Context(), userID, start)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleTrends handles GET /v1/meals/trends?days=
func (h *Handler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "days must be an integer")
			return
		}
		days = v
	}

	resp, err := h.service.Trends(r.Context(), userID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSuggestions handles GET /v1/meals/suggestions?date=
func (h *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	resp, err := h.service.Suggestions(r.Context(), userID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// dateParam reads a YYYY-MM-DD query value; empty means today.
func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	date, err := dates.ParseOr(r.URL.Query().Get(name), h.service.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return time.Time{}, false
	}
	return date, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	}
	return userID, ok
}

func writeServiceError(w http.ResponseWriter, err error) {
	var incomplete *nutrition.IncompleteProfileError
	switch {
	case errors.As(err, &incomplete):
		nutrition.WriteIncompleteProfile(w, incomplete)
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": "))
	case errors.Is(err, ErrProductNotFound):
		writeError(w, http.StatusBadRequest, "product_not_found", err.Error())
	case errors.Is(err, ErrMealNotFound):
		writeError(w, http.StatusNotFound, "meal_not_found", "Meal not found")
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
