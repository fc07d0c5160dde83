package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/userctx"
	"github.com/google/uuid"
)

// Handlers handles HTTP requests for reports
type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleCreate handles POST /v1/reports
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	meta, err := h.service.CreateReport(r.Context(), userID, req)
	if err != nil {
		var incomplete *nutrition.IncompleteProfileError
		switch {
		case errors.Is(err, ErrInvalidFormat):
			writeError(w, http.StatusBadRequest, "invalid_format", "Format must be 'pdf' or 'csv'")
		case errors.Is(err, ErrInvalidDate):
			writeError(w, http.StatusBadRequest, "invalid_date", "Invalid date format, use YYYY-MM-DD")
		case errors.Is(err, ErrFutureWeek):
			writeError(w, http.StatusBadRequest, "invalid_request", "week_start must not be in the future")
		case errors.As(err, &incomplete):
			nutrition.WriteIncompleteProfile(w, incomplete)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create report")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toDTO(*meta, getBaseURL(r)))
}

// HandleList handles GET /v1/reports?limit=&offset=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	list, err := h.service.ListReports(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list reports")
		return
	}

	baseURL := getBaseURL(r)
	dtos := make([]ReportDTO, len(list))
	for i, meta := range list {
		dtos[i] = toDTO(meta, baseURL)
	}
	writeJSON(w, http.StatusOK, ReportsResponse{Reports: dtos})
}

// HandleDownload handles GET /v1/reports/{id}/download
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	reportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid report ID")
		return
	}

	d, err := h.service.Download(r.Context(), userID, reportID)
	if err != nil {
		writeReportError(w, err)
		return
	}

	if d.RedirectURL != "" {
		http.Redirect(w, r, d.RedirectURL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", d.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(d.Data)
}

// HandleDelete handles DELETE /v1/reports/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	reportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid report ID")
		return
	}

	if err := h.service.DeleteReport(r.Context(), userID, reportID); err != nil {
		writeReportError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	}
	return userID, ok
}

func writeReportError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report_not_found", "Report not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
