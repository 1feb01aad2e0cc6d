package handlers

import (
	"net/http"

	"github.com/diewo77/importdesk/internal/httpx"
	"github.com/diewo77/importdesk/internal/services"
)

type SupplierHandler struct {
	Svc *services.SupplierService
}

func NewSupplierHandler(svc *services.SupplierService) *SupplierHandler {
	return &SupplierHandler{Svc: svc}
}

// List: GET /suppliers — cross-order distinct aggregation.
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	aggs, err := h.Svc.ListAll(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_suppliers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": aggs, "total": len(aggs)})
}
