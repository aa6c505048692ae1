package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AG-1laksh/JanPath-sub001/internal/middleware"
	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/service"
	"github.com/AG-1laksh/JanPath-sub001/internal/utils"
)

// RequestHTTP serves the two approval queues.
type RequestHTTP struct {
	svc *service.RequestService
}

func NewRequestHTTP(svc *service.RequestService) *RequestHTTP { return &RequestHTTP{svc: svc} }

// -----------------------------------------------------------------------------
// Worker assignment requests
// -----------------------------------------------------------------------------

// POST /api/worker-requests  (worker)
func (h *RequestHTTP) CreateWorkerRequest() http.HandlerFunc {
	type inDTO struct {
		GrievanceID string `json:"grievanceId"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		wr, err := h.svc.RequestAssignment(r.Context(), uid, in.GrievanceID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, wr)
	}
}

// GET /api/worker-requests?status=  admins see the queue, workers their own.
func (h *RequestHTTP) ListWorkerRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		role, _ := utils.GetString(r.Context(), middleware.CtxRole)
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)

		workerID := ""
		if role != models.RoleAdmin {
			workerID = uid
		}
		items, err := h.svc.ListWorkerRequests(r.Context(), status, workerID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

// POST /api/worker-requests/{id}/approve  (admin)
func (h *RequestHTTP) ApproveWorkerRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		wr, err := h.svc.ApproveWorkerRequest(r.Context(), uid, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, wr)
	}
}

// POST /api/worker-requests/{id}/reject  (admin)
func (h *RequestHTTP) RejectWorkerRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		wr, err := h.svc.RejectWorkerRequest(r.Context(), uid, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, wr)
	}
}

// -----------------------------------------------------------------------------
// Worker signup requests
// -----------------------------------------------------------------------------

// POST /api/worker-signup-requests  (citizen)
func (h *RequestHTTP) CreateSignupRequest() http.HandlerFunc {
	type inDTO struct {
		Department string `json:"department"`
		City       string `json:"city"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		sr, err := h.svc.RequestSignup(r.Context(), uid, in.Department, in.City)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, sr)
	}
}

// GET /api/worker-signup-requests?status=  (admin)
func (h *RequestHTTP) ListSignupRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		items, err := h.svc.ListSignupRequests(r.Context(), status)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

// POST /api/worker-signup-requests/{id}/approve | /reject  (admin)
func (h *RequestHTTP) DecideSignupRequest(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		sr, err := h.svc.DecideSignup(r.Context(), uid, chi.URLParam(r, "id"), approve)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, sr)
	}
}
