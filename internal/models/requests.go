package models

import "time"

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// WorkerRequest is a worker asking to be assigned to a grievance.
// Resolved by an admin; approval runs the assignment transition.
type WorkerRequest struct {
	ID          string     `json:"id"`
	GrievanceID string     `json:"grievanceId"`
	WorkerID    string     `json:"workerId"`
	Status      string     `json:"status"` // pending | approved | rejected
	DecidedBy   string     `json:"decidedBy,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`

	WorkerName     string `json:"workerName,omitempty"`
	GrievanceTitle string `json:"grievanceTitle,omitempty"`
}

// WorkerSignupRequest is a citizen asking for the worker role.
// While pending the requester's role is worker_pending.
type WorkerSignupRequest struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Name        string     `json:"name"`
	Department  string     `json:"department"`
	City        string     `json:"city"`
	Status      string     `json:"status"`
	DecidedBy   string     `json:"decidedBy,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
}
