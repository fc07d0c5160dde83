package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/fdg312/cut-sprint/internal/storage/memory"
)

var fixedNow = time.Date(2026, 2, 11, 15, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	if cfg.Nutrition.ProteinGPerKg == 0 {
		cfg.Nutrition = config.DefaultNutritionConfig()
	}
	srv := newWithStorage(cfg, memory.New())
	srv.setClock(func() time.Time { return fixedNow })
	return srv
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	cfg := &config.Config{Port: 8080}
	srv := New(cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", resp["status"])
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	cfg := &config.Config{Port: 8080}
	srv := New(cfg)

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestRoutes_ProfileTargetsMealsBudget(t *testing.T) {
	srv := newTestServer(t, &config.Config{})
	h := srv.Handler()

	rr := doRequest(t, h, http.MethodGet, "/v1/nutrition/targets", "", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("targets before profile: expected 422, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, h, http.MethodPut, "/v1/profile", "", map[string]interface{}{
		"weight_kg": 70,
		"height_cm": 175,
		"age":       30,
		"gender":    "male",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("put profile: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, h, http.MethodGet, "/v1/nutrition/targets", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("targets: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var targets struct {
		BMR   int `json:"bmr"`
		TDEE  int `json:"tdee"`
		Daily struct {
			Calories int `json:"calories"`
		} `json:"daily"`
		Weekly struct {
			Calories int `json:"calories"`
		} `json:"weekly"`
	}
	decode(t, rr, &targets)
	if targets.BMR != 1649 || targets.TDEE != 2556 {
		t.Fatalf("expected bmr 1649 tdee 2556, got %d %d", targets.BMR, targets.TDEE)
	}
	if targets.Daily.Calories != 2006 || targets.Weekly.Calories != 14042 {
		t.Fatalf("expected daily 2006 weekly 14042, got %d %d", targets.Daily.Calories, targets.Weekly.Calories)
	}

	rr = doRequest(t, h, http.MethodPost, "/v1/meals", "", map[string]interface{}{
		"date":      "2026-02-11",
		"meal_type": "lunch",
		"calories":  650,
		"protein_g": 40,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create meal: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, h, http.MethodGet, "/v1/budgets/daily?date=2026-02-11", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("daily budget: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var daily struct {
		TargetCalories    int `json:"target_calories"`
		ActualCalories    int `json:"actual_calories"`
		RemainingCalories int `json:"remaining_calories"`
	}
	decode(t, rr, &daily)
	if daily.TargetCalories != 2006 || daily.ActualCalories != 650 || daily.RemainingCalories != 1356 {
		t.Fatalf("expected 2006/650/1356, got %+v", daily)
	}
}

func TestRoutes_ActivitiesOffsetBudget(t *testing.T) {
	srv := newTestServer(t, &config.Config{})
	h := srv.Handler()

	rr := doRequest(t, h, http.MethodPut, "/v1/profile", "", map[string]interface{}{
		"weight_kg": 70,
		"height_cm": 175,
		"age":       30,
		"gender":    "male",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("put profile: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, h, http.MethodPost, "/v1/meals", "", map[string]interface{}{
		"date":      "2026-02-10",
		"meal_type": "dinner",
		"calories":  2500,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create meal: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	// вчерашний ужин копируется на сегодня
	rr = doRequest(t, h, http.MethodPost, "/v1/meals/duplicate-yesterday", "", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("duplicate yesterday: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, h, http.MethodPost, "/v1/activities", "", map[string]interface{}{
		"type":             "cycling",
		"duration_minutes": 30,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create activity: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, h, http.MethodGet, "/v1/activities/suggestions", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("suggestions: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var suggestions struct {
		ConsumedCalories int `json:"consumed_calories"`
		BurnedCalories   int `json:"burned_calories"`
		ExcessCalories   int `json:"excess_calories"`
		Suggestions      []struct {
			Type string `json:"type"`
		} `json:"suggestions"`
	}
	decode(t, rr, &suggestions)
	if suggestions.ConsumedCalories != 2500 || suggestions.BurnedCalories != 240 || suggestions.ExcessCalories != 254 {
		t.Fatalf("expected 2500/240/254, got %+v", suggestions)
	}
	if len(suggestions.Suggestions) != 1 || suggestions.Suggestions[0].Type != "walking" {
		t.Fatalf("expected a single walk, got %+v", suggestions.Suggestions)
	}

	rr = doRequest(t, h, http.MethodGet, "/v1/activities/stats", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", rr.Code)
	}
}

func TestRoutes_WeeklyReportRoundTrip(t *testing.T) {
	srv := newTestServer(t, &config.Config{})
	h := srv.Handler()

	rr := doRequest(t, h, http.MethodPut, "/v1/profile", "", map[string]interface{}{
		"weight_kg": 70,
		"height_cm": 175,
		"age":       30,
		"gender":    "male",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("put profile: expected 200, got %d", rr.Code)
	}

	rr = doRequest(t, h, http.MethodPost, "/v1/reports", "", map[string]string{"format": "csv"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create report: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var report struct {
		ID        string `json:"id"`
		WeekStart string `json:"week_start"`
	}
	decode(t, rr, &report)
	if report.WeekStart != "2026-02-09" {
		t.Fatalf("expected week_start 2026-02-09, got %s", report.WeekStart)
	}

	rr = doRequest(t, h, http.MethodGet, "/v1/reports/"+report.ID+"/download", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("expected text/csv, got %q", got)
	}
	if !strings.HasPrefix(rr.Body.String(), "date,meals,calories") {
		t.Fatalf("unexpected csv body: %q", rr.Body.String())
	}
}

func TestRoutes_RequiredAuthWithDevToken(t *testing.T) {
	srv := newTestServer(t, &config.Config{
		AuthMode:     config.AuthModeDev,
		AuthRequired: true,
		JWTSecret:    "test-secret",
	})
	h := srv.Handler()

	rr := doRequest(t, h, http.MethodGet, "/v1/profile", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	rr = doRequest(t, h, http.MethodGet, "/healthz", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected public healthz, got %d", rr.Code)
	}

	rr = doRequest(t, h, http.MethodPost, "/v1/auth/dev", "", map[string]string{"user_id": "alice"})
	if rr.Code != http.StatusOK {
		t.Fatalf("dev auth: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var tok struct {
		AccessToken string `json:"access_token"`
		UserID      string `json:"user_id"`
	}
	decode(t, rr, &tok)
	if tok.AccessToken == "" || tok.UserID != "alice" {
		t.Fatalf("unexpected token response: %+v", tok)
	}

	rr = doRequest(t, h, http.MethodGet, "/v1/profile", tok.AccessToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRoutes_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, &config.Config{})

	rr := doRequest(t, srv.Handler(), http.MethodGet, "/v1/unknown", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestRoutes_MalformedBodyIsInvalidJSON(t *testing.T) {
	srv := newTestServer(t, &config.Config{AuthMode: config.AuthModeDev, JWTSecret: "test-secret"})
	h := srv.Handler()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/v1/profile"},
		{http.MethodPost, "/v1/nutrition/scale"},
		{http.MethodPost, "/v1/products"},
		{http.MethodPost, "/v1/weights"},
		{http.MethodPost, "/v1/meals"},
		{http.MethodPost, "/v1/meals/duplicate-yesterday"},
		{http.MethodPost, "/v1/activities"},
		{http.MethodPut, "/v1/activities/00000000-0000-0000-0000-000000000001"},
		{http.MethodPost, "/v1/activities/calculate-calories"},
		{http.MethodPatch, "/v1/budgets/00000000-0000-0000-0000-000000000001"},
		{http.MethodPost, "/v1/analysis/meal"},
		{http.MethodPost, "/v1/reports"},
		{http.MethodPost, "/v1/auth/dev"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, strings.NewReader(`{"broken":`))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			var resp struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			decode(t, rr, &resp)
			if resp.Error.Code != "invalid_json" {
				t.Fatalf("expected invalid_json, got %q", resp.Error.Code)
			}
		})
	}
}
