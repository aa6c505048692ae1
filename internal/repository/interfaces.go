package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AG-1laksh/JanPath-sub001/internal/models"
)

// ErrConflict is returned when a guarded status update matches zero rows,
// i.e. the grievance is no longer in the expected predecessor status.
var ErrConflict = errors.New("status conflict")

type GrievanceRepository interface {
	// Create inserts the grievance and its initial "Submitted" status log
	// in one transaction; neither row exists without the other.
	Create(ctx context.Context, g *models.Grievance, remarks string) error

	Get(ctx context.Context, id string) (*models.Grievance, error)
	List(ctx context.Context, f GrievanceFilter) ([]models.Grievance, error)
	Count(ctx context.Context, f GrievanceFilter) (int, error)

	// Transition moves a grievance from → to with a compare-and-swap guard
	// on the current status and appends the matching status log, all in one
	// transaction. workerID is set on the row only when to == Assigned.
	// Returns ErrConflict when the guard matches no row.
	Transition(ctx context.Context, id, from, to, actorID, workerID, remarks string) error

	Logs(ctx context.Context, grievanceID string) ([]models.StatusLog, error)

	// Reporting counters.
	CountByStatus(ctx context.Context, statuses []string, inclusive bool) (int, error)
	CountCompletedSince(ctx context.Context, since time.Time) (int, error)
	CountOpenByPriorities(ctx context.Context, prios []string) (int, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, q, role string, limit, offset int) ([]models.User, int, error)
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
}

type RequestRepository interface {
	CreateWorkerRequest(ctx context.Context, r *models.WorkerRequest) error
	GetWorkerRequest(ctx context.Context, id string) (*models.WorkerRequest, error)
	ListWorkerRequests(ctx context.Context, status, workerID string) ([]models.WorkerRequest, error)

	// ApproveWorkerRequest marks the pending request approved and runs the
	// Submitted → Assigned transition for its grievance in one transaction.
	ApproveWorkerRequest(ctx context.Context, id, adminID, remarks string) (*models.WorkerRequest, error)
	RejectWorkerRequest(ctx context.Context, id, adminID string) (*models.WorkerRequest, error)

	// CreateSignupRequest inserts the pending request and moves the
	// requester's role to worker_pending in one transaction.
	CreateSignupRequest(ctx context.Context, r *models.WorkerSignupRequest) error
	GetSignupRequest(ctx context.Context, id string) (*models.WorkerSignupRequest, error)
	ListSignupRequests(ctx context.Context, status string) ([]models.WorkerSignupRequest, error)

	// DecideSignupRequest resolves a pending request and sets the target
	// user's role (worker on approve, back to user on reject) atomically.
	DecideSignupRequest(ctx context.Context, id, adminID string, approve bool) (*models.WorkerSignupRequest, error)
}
