package models

import "time"

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"` // user | worker_pending | worker | admin
	Department string    `json:"department,omitempty"`
	City       string    `json:"city,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	State      string    `json:"state,omitempty"`
	Address    string    `json:"address,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

const (
	RoleUser          = "user"
	RoleWorkerPending = "worker_pending"
	RoleWorker        = "worker"
	RoleAdmin         = "admin"
)
