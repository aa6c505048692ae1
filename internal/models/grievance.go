package models

import "time"

type Grievance struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Priority         string    `json:"priority"`
	Status           string    `json:"status"`
	ImageBase64      string    `json:"imageBase64,omitempty"`
	UserID           string    `json:"userId"`
	AssignedWorkerID string    `json:"assignedWorkerId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Populated by JOIN on list/detail reads, not stored.
	WorkerName string `json:"workerName,omitempty"`
	UserName   string `json:"userName,omitempty"`
}

// StatusLog is the append-only audit trail of a grievance. Rows are only
// ever inserted, in the same transaction as the status change they record.
type StatusLog struct {
	ID          string    `json:"id"`
	GrievanceID string    `json:"grievanceId"`
	Status      string    `json:"status"`
	UpdatedBy   string    `json:"updatedBy"`
	Remarks     string    `json:"remarks"`
	CreatedAt   time.Time `json:"timestamp"`
}
