package meals

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/cut-sprint/internal/userctx"
	"github.com/google/uuid"
)

func newTestMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/meals", h.HandleCreate)
	mux.HandleFunc("GET /v1/meals", h.HandleList)
	mux.HandleFunc("POST /v1/meals/duplicate-yesterday", h.HandleDuplicateYesterday)
	mux.HandleFunc("DELETE /v1/meals/{id}", h.HandleDelete)
	mux.HandleFunc("GET /v1/meals/summary/daily", h.HandleDailySummary)
	mux.HandleFunc("GET /v1/meals/summary/weekly", h.HandleWeeklySummary)
	mux.HandleFunc("GET /v1/meals/trends", h.HandleTrends)
	mux.HandleFunc("GET /v1/meals/suggestions", h.HandleSuggestions)
	return mux
}

func doRequest(mux http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(userctx.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	return resp.Error.Code
}

func TestHandlersRequireUser(t *testing.T) {
	svc, _ := newTestService(t)
	mux := newTestMux(NewHandler(svc))

	rec := doRequest(mux, http.MethodGet, "/v1/meals", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleCreateAndList(t *testing.T) {
	svc, _ := newTestService(t)
	mux := newTestMux(NewHandler(svc))

	rec := doRequest(mux, http.MethodPost, "/v1/meals", testUser, `{"meal_type":"brunch","calories":300}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doRequest(mux, http.MethodPost, "/v1/meals", testUser,
		`{"meal_type":"lunch","items":[{"product_id":"`+uuid.NewString()+`","grams":100}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown product, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "product_not_found" {
		t.Fatalf("expected product_not_found, got %s", code)
	}

	rec = doRequest(mux, http.MethodPost, "/v1/meals", testUser, `{"meal_type":"lunch","calories":650,"protein_g":45}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(mux, http.MethodGet, "/v1/meals?date=2026-02-11", testUser, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp MealsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(resp.Meals) != 1 || resp.Totals.Calories != 650 {
		t.Fatalf("unexpected list: %+v", resp)
	}
}

func TestHandleDelete(t *testing.T) {
	svc, _ := newTestService(t)
	mux := newTestMux(NewHandler(svc))

	rec := doRequest(mux, http.MethodDelete, "/v1/meals/abc", testUser, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doRequest(mux, http.MethodDelete, "/v1/meals/"+uuid.NewString(), testUser, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleTrendsValidation(t *testing.T) {
	svc, _ := newTestService(t)
	mux := newTestMux(NewHandler(svc))

	for _, target := range []string{"/v1/meals/trends?days=abc", "/v1/meals/trends?days=3", "/v1/meals/trends?days=120"} {
		rec := doRequest(mux, http.MethodGet, target, testUser, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}

	rec := doRequest(mux, http.MethodGet, "/v1/meals/trends?days=14", testUser, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleWeeklySummary(t *testing.T) {
	svc, _ := newTestService(t)
	mux := newTestMux(NewHandler(svc))

	rec := doRequest(mux, http.MethodGet, "/v1/meals/summary/weekly?start=2026-02-14", testUser, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary WeeklySummary
	_ = json.NewDecoder(rec.Body).Decode(&summary)
	if summary.StartDate != "2026-02-09" || len(summary.Days) != 7 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestHandleSuggestionsIncompleteProfile(t *testing.T) {
	svc, _ := newTestService(t)
	mux := newTestMux(NewHandler(svc))

	rec := doRequest(mux, http.MethodGet, "/v1/meals/suggestions", "fresh-user", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "incomplete_profile" {
		t.Fatalf("expected incomplete_profile, got %s", code)
	}
}

func TestHandleDuplicateYesterday(t *testing.T) {
	svc, _ := newTestService(t)
	mux := newTestMux(NewHandler(svc))
	logMeal(t, svc, CreateMealRequest{Date: "2026-02-10", Calories: 500})

	rec := doRequest(mux, http.MethodPost, "/v1/meals/duplicate-yesterday", testUser, `{"target_date":"11.02.2026"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}

	// пустое тело означает сегодня (2026-02-11)
	rec = doRequest(mux, http.MethodPost, "/v1/meals/duplicate-yesterday", testUser, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp MealsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Date != "2026-02-11" || len(resp.Meals) != 1 || resp.Totals.Calories != 500 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

