package handlers

import (
	"net/http"
	"time"

	"github.com/AG-1laksh/JanPath-sub001/internal/repository"
	"github.com/AG-1laksh/JanPath-sub001/internal/utils"
)

type ReportsHTTP struct {
	repo repository.GrievanceRepository
}

func NewReportsHTTP(r repository.GrievanceRepository) *ReportsHTTP { return &ReportsHTTP{repo: r} }

// GET /api/reports/summary
// Returns: { open, completed7d, highPriorityOpen }
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		open, err := h.repo.CountByStatus(r.Context(), []string{"Completed", "Rejected", "Closed"}, false)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		completed7d, err := h.repo.CountCompletedSince(r.Context(), time.Now().Add(-7*24*time.Hour))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		highOpen, err := h.repo.CountOpenByPriorities(r.Context(), []string{"High", "Critical"})
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		utils.JSON(w, http.StatusOK, map[string]int{
			"open":             open,
			"completed7d":      completed7d,
			"highPriorityOpen": highOpen,
		})
	}
}
