package budgets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/userctx"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for weekly budgets.
type Handler struct {
	engine *Engine
}

// NewHandler creates a new budgets handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// HandleCurrent handles GET /v1/budgets/current
func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	budget, err := h.engine.CurrentBudget(r.Context(), userID, h.engine.today())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, budgetToDTO(*budget))
}

// HandleDaily handles GET /v1/budgets/daily?date=YYYY-MM-DD
func (h *Handler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	breakdown, err := h.engine.DailyBreakdown(r.Context(), userID, date)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, breakdown)
}

// HandleCompensation handles GET /v1/budgets/compensation?date=YYYY-MM-DD
func (h *Handler) HandleCompensation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}

	plan, err := h.engine.WeekendCompensationPlan(r.Context(), userID, date)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// HandleProgress handles GET /v1/budgets/progress?start=YYYY-MM-DD
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var start *time.Time
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := dates.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		start = &parsed
	}

	progress, err := h.engine.WeeklyProgress(r.Context(), userID, start)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// HandleSuggestions handles GET /v1/budgets/suggestions
func (h *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	suggestions, err := h.engine.Suggestions(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestions)
}

// HandleStatus handles GET /v1/budgets/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	status, err := h.engine.Status(r.Context(), userID, h.engine.today())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// HandleList handles GET /v1/budgets?limit=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
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

	budgets, err := h.engine.List(r.Context(), userID, limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := BudgetsResponse{Budgets: make([]BudgetDTO, 0, len(budgets))}
	for _, b := range budgets {
		resp.Budgets = append(resp.Budgets, budgetToDTO(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PATCH /v1/budgets/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid budget id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	budget, err := h.engine.Update(r.Context(), userID, id, req)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, budgetToDTO(*budget))
}

// dateParam reads a YYYY-MM-DD query value; empty means today.
func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	date, err := dates.ParseOr(r.URL.Query().Get(name), h.engine.today())
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

func writeEngineError(w http.ResponseWriter, err error) {
	var incomplete *nutrition.IncompleteProfileError
	switch {
	case errors.As(err, &incomplete):
		nutrition.WriteIncompleteProfile(w, incomplete)
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": "))
	case errors.Is(err, ErrBudgetNotFound):
		writeError(w, http.StatusNotFound, "budget_not_found", "Budget not found")
	case errors.Is(err, ErrBudgetConflict):
		writeError(w, http.StatusConflict, "budget_conflict", err.Error())
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
