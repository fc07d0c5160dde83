package nutrition

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fdg312/cut-sprint/internal/userctx"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for nutrition targets and products.
type Handler struct {
	service *Service
}

// NewHandler creates a new nutrition handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGetTargets handles GET /v1/nutrition/targets
func (h *Handler) HandleGetTargets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	targets, err := h.service.GetTargets(r.Context(), userID)
	if err != nil {
		var incomplete *IncompleteProfileError
		if errors.As(err, &incomplete) {
			WriteIncompleteProfile(w, incomplete)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to calculate nutrition targets")
		return
	}

	writeJSON(w, http.StatusOK, targets)
}

// HandleScale handles POST /v1/nutrition/scale
func (h *Handler) HandleScale(w http.ResponseWriter, r *http.Request) {
	var req ScaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	resp, err := h.service.Scale(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleCreateProduct handles POST /v1/products
func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// HandleGetProduct handles GET /v1/products/{id}
func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid product id")
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// HandleSearchProducts handles GET /v1/products?query=&limit=
func (h *Handler) HandleSearchProducts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	resp, err := h.service.SearchProducts(r.Context(), r.URL.Query().Get("query"), limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		msg := strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": ")
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
	case errors.Is(err, ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", "Product not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteIncompleteProfile writes a 422 with the list of missing profile fields.
func WriteIncompleteProfile(w http.ResponseWriter, err *IncompleteProfileError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    "incomplete_profile",
			"message": "Profile is missing required fields",
			"missing": err.Missing,
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
