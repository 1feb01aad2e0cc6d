package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/importdesk/internal/httpx"
	"github.com/diewo77/importdesk/internal/models"
	"github.com/diewo77/importdesk/internal/services"
)

type PaymentHandler struct {
	Svc *services.PaymentService
}

func NewPaymentHandler(svc *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Svc: svc}
}

// Create: POST /payments
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	type createReq struct {
		models.Payment
		ProductIDs []string `json:"product_ids"`
		CostIDs    []string `json:"cost_ids"`
	}
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.OrderID == "" || req.Amount == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"order_id": "required", "amount": "required"})
		return
	}
	if err := h.Svc.Create(r.Context(), &req.Payment, req.ProductIDs, req.CostIDs); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			httpx.JSONError(w, http.StatusBadRequest, "order_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_payment", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, req.Payment)
}

// Approve: POST /payments/approve?id=...
func (h *PaymentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	ok, err := h.Svc.Approve(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_approve_payment", nil)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// Dismiss: POST /payments/dismiss?id=... — pending only.
func (h *PaymentHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	ok, err := h.Svc.Dismiss(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotPending) {
			httpx.JSONError(w, http.StatusConflict, "payment_not_pending", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_dismiss_payment", nil)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// Update: POST /payments/update?id=...
func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_payment", nil)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Links: POST /payments/links?id=... replaces both association sets.
func (h *PaymentHandler) Links(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	var req struct {
		ProductIDs []string `json:"product_ids"`
		CostIDs    []string `json:"cost_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	ok, err := h.Svc.ReplaceLinks(r.Context(), id, req.ProductIDs, req.CostIDs)
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

// Delete: POST /payments/delete?id=... — manual removal, any status.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	ok, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_payment", nil)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
