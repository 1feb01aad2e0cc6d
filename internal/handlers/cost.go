package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/importdesk/internal/httpx"
	"github.com/diewo77/importdesk/internal/models"
	"github.com/diewo77/importdesk/internal/services"
)

type CostHandler struct {
	Svc *services.CostService
}

func NewCostHandler(svc *services.CostService) *CostHandler { return &CostHandler{Svc: svc} }

// Create: POST /costs — the optional product_ids list scopes the cost;
// omitting it leaves the cost applying to every product in the order.
func (h *CostHandler) Create(w http.ResponseWriter, r *http.Request) {
	type createReq struct {
		models.AdditionalCost
		ProductIDs []string `json:"product_ids"`
	}
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.OrderID == "" || strings.TrimSpace(req.Description) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"order_id": "required", "description": "required"})
		return
	}
	if err := h.Svc.Create(r.Context(), &req.AdditionalCost, req.ProductIDs); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			httpx.JSONError(w, http.StatusBadRequest, "order_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_cost", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, req.AdditionalCost)
}

// Update: POST /costs/update?id=...
func (h *CostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	ok, err := h.Svc.Update(r.Context(), id, patch)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_cost", nil)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Links: POST /costs/links?id=... replaces the cost's product scope.
func (h *CostHandler) Links(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var req struct {
		ProductIDs []string `json:"product_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	ok, err := h.Svc.ReplaceProductLinks(r.Context(), id, req.ProductIDs)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_replace_links", nil)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "replaced"})
}

// Delete: POST /costs/delete?id=...
func (h *CostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	ok, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_cost", nil)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
