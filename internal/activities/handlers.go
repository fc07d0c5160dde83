package activities

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/userctx"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the workout log.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCreate handles POST /v1/activities
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	activity, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, activity)
}

// HandleList handles GET /v1/activities?date=&from=&to=&type=
// date задаёт один день, иначе диапазон (по умолчанию 30 дней).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var from, to time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err := dates.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		from, to = day, day
	} else {
		from, to, ok = h.rangeParams(w, r)
		if !ok {
			return
		}
	}

	resp, err := h.service.List(r.Context(), userID, from, to, r.URL.Query().Get("type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /v1/activities/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	activity, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// HandleUpdate handles PUT /v1/activities/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	var req UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	activity, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// HandleDelete handles DELETE /v1/activities/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := activityID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDailyCalories handles GET /v1/activities/daily-calories?date=
func (h *Handler) HandleDailyCalories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	day, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	resp, err := h.service.DailyBurned(r.Context(), userID, day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleWeeklyCalories handles GET /v1/activities/weekly-calories?start=
func (h *Handler) HandleWeeklyCalories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	day, ok := h.dateParam(w, r, "start")
	if !ok {
		return
	}

	resp, err := h.service.WeeklyBurned(r.Context(), userID, day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleStats handles GET /v1/activities/stats?from=&to=
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	from, to, ok := h.rangeParams(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Stats(r.Context(), userID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSuggestions handles GET /v1/activities/suggestions?date=
func (h *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	day, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	resp, err := h.service.Suggestions(r.Context(), userID, day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePresets handles GET /v1/activities/presets
func (h *Handler) HandlePresets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Presets(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCalculate handles POST /v1/activities/calculate-calories
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	resp, err := h.service.Calculate(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	day, err := dates.ParseOr(r.URL.Query().Get(name), h.service.today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return time.Time{}, false
	}
	return day, true
}

func (h *Handler) rangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	to, ok := h.dateParam(w, r, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	from, err := dates.ParseOr(r.URL.Query().Get("from"), to.AddDate(0, 0, -DefaultWindowDays))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func activityID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid activity id")
		return uuid.Nil, false
	}
	return id, true
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
	case errors.Is(err, ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "activity_not_found", "Activity not found")
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
