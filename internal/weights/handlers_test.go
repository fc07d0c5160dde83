package weights

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
	mux.HandleFunc("POST /v1/weights", h.HandleAdd)
	mux.HandleFunc("GET /v1/weights", h.HandleList)
	mux.HandleFunc("DELETE /v1/weights/{id}", h.HandleDelete)
	mux.HandleFunc("GET /v1/weights/predictions", h.HandlePredictions)
	mux.HandleFunc("GET /v1/weights/change", h.HandleChange)
	mux.HandleFunc("GET /v1/weights/reminder", h.HandleReminder)
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

func TestHandlersRequireUser(t *testing.T) {
	mux := newTestMux(NewHandler(newTestService(t)))

	rec := doRequest(mux, http.MethodGet, "/v1/weights", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleAddAndList(t *testing.T) {
	mux := newTestMux(NewHandler(newTestService(t)))

	rec := doRequest(mux, http.MethodPost, "/v1/weights", testUser, `{"value_kg":10}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doRequest(mux, http.MethodPost, "/v1/weights", testUser, `{bad json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}

	rec = doRequest(mux, http.MethodPost, "/v1/weights", testUser, `{"date":"2026-02-10","value_kg":79.4,"flags":["morning"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(mux, http.MethodGet, "/v1/weights", testUser, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp WeightsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(resp.Weights) != 1 || resp.Weights[0].ValueKg != 79.4 {
		t.Fatalf("unexpected list: %+v", resp.Weights)
	}

	rec = doRequest(mux, http.MethodGet, "/v1/weights?from=2026-02-11", testUser, "")
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Weights) != 0 {
		t.Fatalf("expected empty list, got %+v", resp.Weights)
	}

	rec = doRequest(mux, http.MethodGet, "/v1/weights?to=yesterday", testUser, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	mux := newTestMux(NewHandler(newTestService(t)))

	rec := doRequest(mux, http.MethodDelete, "/v1/weights/not-a-uuid", testUser, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doRequest(mux, http.MethodDelete, "/v1/weights/"+uuid.NewString(), testUser, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doRequest(mux, http.MethodPost, "/v1/weights", testUser, `{"value_kg":80}`)
	var dto WeightDTO
	_ = json.NewDecoder(rec.Body).Decode(&dto)

	rec = doRequest(mux, http.MethodDelete, "/v1/weights/"+dto.ID.String(), testUser, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestHandlePredictionsLimit(t *testing.T) {
	mux := newTestMux(NewHandler(newTestService(t)))

	rec := doRequest(mux, http.MethodGet, "/v1/weights/predictions?weeks=13", testUser, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doRequest(mux, http.MethodGet, "/v1/weights/predictions?weeks=abc", testUser, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doRequest(mux, http.MethodGet, "/v1/weights/predictions", testUser, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp PredictionsResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Predictions == nil || len(resp.Predictions) != 0 {
		t.Fatalf("expected empty predictions without history, got %+v", resp.Predictions)
	}
}

func TestHandleChangeWithoutData(t *testing.T) {
	mux := newTestMux(NewHandler(newTestService(t)))

	rec := doRequest(mux, http.MethodGet, "/v1/weights/change?from=2026-02-01&to=2026-02-11", testUser, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"change":null`) {
		t.Fatalf("expected null change, got %s", rec.Body.String())
	}
}

func TestHandleReminder(t *testing.T) {
	mux := newTestMux(NewHandler(newTestService(t)))

	rec := doRequest(mux, http.MethodGet, "/v1/weights/reminder", testUser, "")
	var resp ReminderResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !resp.ShouldRemind || resp.ReminderAfterDays != ReminderAfterDays {
		t.Fatalf("unexpected reminder: %+v", resp)
	}
}
