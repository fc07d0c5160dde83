package activities

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/cut-sprint/internal/userctx"
)

func newTestMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/activities", h.HandleCreate)
	mux.HandleFunc("GET /v1/activities", h.HandleList)
	mux.HandleFunc("GET /v1/activities/daily-calories", h.HandleDailyCalories)
	mux.HandleFunc("GET /v1/activities/weekly-calories", h.HandleWeeklyCalories)
	mux.HandleFunc("GET /v1/activities/stats", h.HandleStats)
	mux.HandleFunc("GET /v1/activities/suggestions", h.HandleSuggestions)
	mux.HandleFunc("GET /v1/activities/presets", h.HandlePresets)
	mux.HandleFunc("POST /v1/activities/calculate-calories", h.HandleCalculate)
	mux.HandleFunc("GET /v1/activities/{id}", h.HandleGet)
	mux.HandleFunc("PUT /v1/activities/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /v1/activities/{id}", h.HandleDelete)
	return mux
}

func doRequest(mux http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(userctx.WithUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body.Error.Code
}

func TestHandleCreateAndGet(t *testing.T) {
	svc, _ := setupTestService(t)
	mux := newTestMux(NewHandler(svc))

	w := doRequest(mux, http.MethodPost, "/v1/activities", testUser, `{"type":"running","duration_minutes":30}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created ActivityDTO
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if created.EstimatedCalories != 345 || created.Date != "2026-02-11" {
		t.Fatalf("expected 345 kcal today, got %d on %s", created.EstimatedCalories, created.Date)
	}

	w = doRequest(mux, http.MethodGet, "/v1/activities/"+created.ID.String(), testUser, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doRequest(mux, http.MethodGet, "/v1/activities/"+created.ID.String(), "user-2", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "activity_not_found" {
		t.Fatalf("expected activity_not_found, got %s", code)
	}
}

func TestHandleCreateErrors(t *testing.T) {
	svc, _ := setupTestService(t)
	mux := newTestMux(NewHandler(svc))

	tests := []struct {
		name       string
		userID     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"no user", "", `{"type":"running","duration_minutes":30}`, http.StatusUnauthorized, "unauthorized"},
		{"broken json", testUser, `{"type":`, http.StatusBadRequest, "invalid_json"},
		{"unknown type", testUser, `{"type":"yoga","duration_minutes":30}`, http.StatusBadRequest, "invalid_request"},
		{"too long", testUser, `{"type":"running","duration_minutes":600}`, http.StatusBadRequest, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(mux, http.MethodPost, "/v1/activities", tt.userID, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if code := errorCode(t, w); code != tt.wantCode {
				t.Fatalf("expected %s, got %s", tt.wantCode, code)
			}
		})
	}
}

func TestHandleUpdateAndDelete(t *testing.T) {
	svc, _ := setupTestService(t)
	mux := newTestMux(NewHandler(svc))
	created := mustCreate(t, svc, CreateActivityRequest{Type: "cycling", DurationMinutes: 30})
	path := "/v1/activities/" + created.ID.String()

	w := doRequest(mux, http.MethodPut, path, testUser, `{"duration_minutes":45}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated ActivityDTO
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if updated.EstimatedCalories != 360 {
		t.Fatalf("expected 360 kcal, got %d", updated.EstimatedCalories)
	}

	w = doRequest(mux, http.MethodPut, "/v1/activities/not-a-uuid", testUser, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}

	w = doRequest(mux, http.MethodDelete, path, testUser, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = doRequest(mux, http.MethodDelete, path, testUser, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestHandleListByDate(t *testing.T) {
	svc, _ := setupTestService(t)
	mux := newTestMux(NewHandler(svc))
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-10", Type: "running", DurationMinutes: 30})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-11", Type: "walking", DurationMinutes: 30})

	w := doRequest(mux, http.MethodGet, "/v1/activities?date=2026-02-10", testUser, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ActivitiesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(resp.Activities) != 1 || resp.TotalCalories != 345 {
		t.Fatalf("expected one run of 345 kcal, got %d items with %d kcal", len(resp.Activities), resp.TotalCalories)
	}

	w = doRequest(mux, http.MethodGet, "/v1/activities?date=10-02-2026", testUser, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}
}

func TestHandleCalorieTotals(t *testing.T) {
	svc, _ := setupTestService(t)
	mux := newTestMux(NewHandler(svc))
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-09", Type: "cycling", DurationMinutes: 45})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-11", Type: "running", DurationMinutes: 20})

	w := doRequest(mux, http.MethodGet, "/v1/activities/daily-calories", testUser, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var daily BurnedResponse
	if err := json.NewDecoder(w.Body).Decode(&daily); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if daily.Calories != 230 {
		t.Fatalf("expected 230 kcal today, got %d", daily.Calories)
	}

	w = doRequest(mux, http.MethodGet, "/v1/activities/weekly-calories?start=2026-02-12", testUser, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var weekly BurnedResponse
	if err := json.NewDecoder(w.Body).Decode(&weekly); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if weekly.From != "2026-02-09" || weekly.Calories != 590 {
		t.Fatalf("expected week from 2026-02-09 with 590 kcal, got %s with %d", weekly.From, weekly.Calories)
	}
}

func TestHandleSuggestionsIncompleteProfile(t *testing.T) {
	svc, _ := setupTestService(t)
	mux := newTestMux(NewHandler(svc))

	w := doRequest(mux, http.MethodGet, "/v1/activities/suggestions", "no-profile", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "incomplete_profile" {
		t.Fatalf("expected incomplete_profile, got %s", code)
	}
}

func TestHandleCalculate(t *testing.T) {
	svc, _ := setupTestService(t)
	mux := newTestMux(NewHandler(svc))

	w := doRequest(mux, http.MethodPost, "/v1/activities/calculate-calories", testUser, `{"type":"swimming","duration_minutes":40,"user_weight_kg":70}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp CalculateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Calories != 360 {
		t.Fatalf("expected 360 kcal, got %d", resp.Calories)
	}

	w = doRequest(mux, http.MethodGet, "/v1/activities/presets", testUser, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for presets, got %d", w.Code)
	}
}
