package repository

type GrievanceFilter struct {
	Q          string // free-text over title/description
	Status     string
	Priority   string
	Category   string
	UserID     string // owning citizen
	WorkerID   string // assigned worker
	Unassigned bool   // assigned_worker_id IS NULL
	Limit      int
	Offset     int
}
