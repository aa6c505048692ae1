package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AG-1laksh/JanPath-sub001/internal/middleware"
	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/repository"
	"github.com/AG-1laksh/JanPath-sub001/internal/service"
	"github.com/AG-1laksh/JanPath-sub001/internal/utils"
)

// GrievanceHTTP wires grievance endpoints to the lifecycle service and the
// read-side repository.
type GrievanceHTTP struct {
	svc        *service.GrievanceService
	grievances repository.GrievanceRepository
}

func NewGrievanceHTTP(svc *service.GrievanceService, grievances repository.GrievanceRepository) *GrievanceHTTP {
	return &GrievanceHTTP{svc: svc, grievances: grievances}
}

// -----------------------------------------------------------------------------
// POST /api/grievances
// -----------------------------------------------------------------------------
func (h *GrievanceHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateGrievanceInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		g, err := h.svc.Create(r.Context(), uid, in)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusCreated, g)
	}
}

// -----------------------------------------------------------------------------
// GET /api/grievances
// Citizens see their own, workers their assignments, admins everything
// (with ?status=&priority=&category=&q=&unassigned=1&limit=&offset=).
// -----------------------------------------------------------------------------
func (h *GrievanceHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		f := repository.GrievanceFilter{
			Q:        strings.TrimSpace(qv.Get("q")),
			Status:   strings.TrimSpace(qv.Get("status")),
			Priority: strings.TrimSpace(qv.Get("priority")),
			Category: strings.TrimSpace(qv.Get("category")),
			Limit:    utils.QueryInt(qv, "limit", 50),
			Offset:   utils.QueryInt(qv, "offset", 0),
		}

		role, _ := utils.GetString(r.Context(), middleware.CtxRole)
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)

		switch role {
		case models.RoleAdmin:
			f.Unassigned = qv.Get("unassigned") == "1"
		case models.RoleWorker:
			f.WorkerID = uid
		default:
			f.UserID = uid
		}

		items, err := h.grievances.List(r.Context(), f)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		total, err := h.grievances.Count(r.Context(), f)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
	}
}

// -----------------------------------------------------------------------------
// GET /api/grievances/{id}
// -----------------------------------------------------------------------------
func (h *GrievanceHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := h.loadVisible(w, r)
		if !ok {
			return
		}
		utils.JSON(w, http.StatusOK, g)
	}
}

// -----------------------------------------------------------------------------
// GET /api/grievances/{id}/logs: the status timeline, oldest first
// -----------------------------------------------------------------------------
func (h *GrievanceHTTP) Logs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := h.loadVisible(w, r)
		if !ok {
			return
		}
		logs, err := h.grievances.Logs(r.Context(), g.ID)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": logs, "total": len(logs)})
	}
}

// -----------------------------------------------------------------------------
// POST /api/grievances/{id}/assign  (admin)
// -----------------------------------------------------------------------------
func (h *GrievanceHTTP) Assign() http.HandlerFunc {
	type inDTO struct {
		WorkerID string `json:"workerId"`
		Remarks  string `json:"remarks"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		g, err := h.svc.Assign(r.Context(), uid, chi.URLParam(r, "id"), in.WorkerID, in.Remarks)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, g)
	}
}

// -----------------------------------------------------------------------------
// POST /api/grievances/{id}/status  (worker progression, admin side exits)
// -----------------------------------------------------------------------------
func (h *GrievanceHTTP) UpdateStatus() http.HandlerFunc {
	type inDTO struct {
		Status  string `json:"status"`
		Remarks string `json:"remarks"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		role, _ := utils.GetString(r.Context(), middleware.CtxRole)
		g, err := h.svc.Transition(r.Context(), uid, role, chi.URLParam(r, "id"), in.Status, in.Remarks)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, g)
	}
}

// POST /api/grievances/{id}/reject: admin shorthand for Submitted → Rejected.
func (h *GrievanceHTTP) Reject() http.HandlerFunc {
	return h.adminExit(models.StatusRejected)
}

// POST /api/grievances/{id}/close: admin shorthand for Assigned → Closed.
func (h *GrievanceHTTP) Close() http.HandlerFunc {
	return h.adminExit(models.StatusClosed)
}

func (h *GrievanceHTTP) adminExit(to string) http.HandlerFunc {
	type inDTO struct {
		Remarks string `json:"remarks"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				utils.Error(w, http.StatusBadRequest, "invalid json")
				return
			}
		}
		uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
		g, err := h.svc.Transition(r.Context(), uid, models.RoleAdmin, chi.URLParam(r, "id"), to, in.Remarks)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSON(w, http.StatusOK, g)
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// loadVisible fetches the grievance and enforces read access: citizens see
// their own, workers their assignments, admins everything. Writes the error
// response itself when access fails.
func (h *GrievanceHTTP) loadVisible(w http.ResponseWriter, r *http.Request) (*models.Grievance, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.Error(w, http.StatusBadRequest, "missing id")
		return nil, false
	}
	g, err := h.grievances.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if g == nil {
		utils.Error(w, http.StatusNotFound, "not found")
		return nil, false
	}

	role, _ := utils.GetString(r.Context(), middleware.CtxRole)
	uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
	switch role {
	case models.RoleAdmin:
	case models.RoleWorker:
		if g.AssignedWorkerID != uid && g.UserID != uid {
			utils.Error(w, http.StatusForbidden, "forbidden")
			return nil, false
		}
	default:
		if g.UserID != uid {
			utils.Error(w, http.StatusForbidden, "forbidden")
			return nil, false
		}
	}
	return g, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalid):
		utils.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		utils.Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrConflict):
		utils.Error(w, http.StatusConflict, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error())
	}
}
