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

type MilestoneHandler struct {
	Svc *services.MilestoneService
}

func NewMilestoneHandler(svc *services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{Svc: svc}
}

// Create: POST /milestones
func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.Milestone
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.OrderID == "" || strings.TrimSpace(req.Title) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"order_id": "required", "title": "required"})
		return
	}
	if err := h.Svc.Create(r.Context(), &req); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			httpx.JSONError(w, http.StatusBadRequest, "order_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_milestone", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, req)
}

// Update: POST /milestones/update?id=...
func (h *MilestoneHandler) Update(w http.ResponseWriter, r *http.Request) {
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
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_milestone", nil)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete: POST /milestones/delete?id=...
func (h *MilestoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return
	}
	ok, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_milestone", nil)
		return
	}
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
