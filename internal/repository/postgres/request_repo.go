package postgres

import (
	"context"
	"strings"

	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepo struct{ db *pgxpool.Pool }

func NewRequestRepo(db *pgxpool.Pool) repository.RequestRepository { return &RequestRepo{db: db} }

// -----------------------------------------------------------------------------
// Worker assignment requests
// -----------------------------------------------------------------------------

const workerReqCols = `
	r.id, r.grievance_id, r.worker_id, r.status,
	COALESCE(r.decided_by::text, ''), r.requested_at, r.decided_at,
	COALESCE(w.name, ''), COALESCE(g.title, '')`

const workerReqJoins = `
	FROM worker_requests r
	LEFT JOIN users w ON w.id = r.worker_id
	LEFT JOIN grievances g ON g.id = r.grievance_id`

func scanWorkerRequest(row pgx.Row, wr *models.WorkerRequest) error {
	return row.Scan(
		&wr.ID, &wr.GrievanceID, &wr.WorkerID, &wr.Status,
		&wr.DecidedBy, &wr.RequestedAt, &wr.DecidedAt,
		&wr.WorkerName, &wr.GrievanceTitle,
	)
}

func (r *RequestRepo) CreateWorkerRequest(ctx context.Context, wr *models.WorkerRequest) error {
	wr.Status = models.RequestPending
	return r.db.QueryRow(ctx, `
		INSERT INTO worker_requests (grievance_id, worker_id)
		VALUES ($1,$2)
		RETURNING id, requested_at
	`, wr.GrievanceID, wr.WorkerID).Scan(&wr.ID, &wr.RequestedAt)
}

func (r *RequestRepo) GetWorkerRequest(ctx context.Context, id string) (*models.WorkerRequest, error) {
	var wr models.WorkerRequest
	err := scanWorkerRequest(r.db.QueryRow(ctx,
		`SELECT `+workerReqCols+workerReqJoins+` WHERE r.id = $1`, id), &wr)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &wr, nil
}

func (r *RequestRepo) ListWorkerRequests(ctx context.Context, status, workerID string) ([]models.WorkerRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if s := strings.TrimSpace(status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "r.status = $"+itoa(len(args)))
	}
	if w := strings.TrimSpace(workerID); w != "" {
		args = append(args, w)
		clauses = append(clauses, "r.worker_id = $"+itoa(len(args)))
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+workerReqCols+workerReqJoins+`
		WHERE `+strings.Join(clauses, " AND ")+`
		ORDER BY r.requested_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WorkerRequest
	for rows.Next() {
		var wr models.WorkerRequest
		if err := scanWorkerRequest(rows, &wr); err != nil {
			return nil, err
		}
		out = append(out, wr)
	}
	return out, rows.Err()
}

// ApproveWorkerRequest flips the pending request to approved AND moves its
// grievance Submitted → Assigned with the CAS guard, in one transaction.
// Either guard failing (request already decided, grievance already taken)
// rolls everything back with ErrConflict.
func (r *RequestRepo) ApproveWorkerRequest(ctx context.Context, id, adminID, remarks string) (*models.WorkerRequest, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var wr models.WorkerRequest
	err = tx.QueryRow(ctx, `
		UPDATE worker_requests
		SET status=$1, decided_by=$2, decided_at=now()
		WHERE id=$3 AND status=$4
		RETURNING id, grievance_id, worker_id, status, decided_by::text, requested_at, decided_at
	`, models.RequestApproved, adminID, id, models.RequestPending).
		Scan(&wr.ID, &wr.GrievanceID, &wr.WorkerID, &wr.Status, &wr.DecidedBy, &wr.RequestedAt, &wr.DecidedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrConflict
		}
		return nil, err
	}

	res, err := tx.Exec(ctx, `
		UPDATE grievances
		SET status=$1, assigned_worker_id=$2, updated_at=now()
		WHERE id=$3 AND status=$4
	`, models.StatusAssigned, wr.WorkerID, wr.GrievanceID, models.StatusSubmitted)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, repository.ErrConflict
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO status_logs (grievance_id, status, updated_by, remarks)
		VALUES ($1,$2,$3,$4)
	`, wr.GrievanceID, models.StatusAssigned, adminID, remarks); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &wr, nil
}

func (r *RequestRepo) RejectWorkerRequest(ctx context.Context, id, adminID string) (*models.WorkerRequest, error) {
	var wr models.WorkerRequest
	err := r.db.QueryRow(ctx, `
		UPDATE worker_requests
		SET status=$1, decided_by=$2, decided_at=now()
		WHERE id=$3 AND status=$4
		RETURNING id, grievance_id, worker_id, status, decided_by::text, requested_at, decided_at
	`, models.RequestRejected, adminID, id, models.RequestPending).
		Scan(&wr.ID, &wr.GrievanceID, &wr.WorkerID, &wr.Status, &wr.DecidedBy, &wr.RequestedAt, &wr.DecidedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &wr, nil
}

// -----------------------------------------------------------------------------
// Worker signup (role upgrade) requests
// -----------------------------------------------------------------------------

const signupReqCols = `
	id, user_id, name, department, city, status,
	COALESCE(decided_by::text, ''), requested_at, decided_at`

func scanSignupRequest(row pgx.Row, sr *models.WorkerSignupRequest) error {
	return row.Scan(
		&sr.ID, &sr.UserID, &sr.Name, &sr.Department, &sr.City, &sr.Status,
		&sr.DecidedBy, &sr.RequestedAt, &sr.DecidedAt,
	)
}

// CreateSignupRequest inserts the pending request and parks the requester
// in the worker_pending role, atomically.
func (r *RequestRepo) CreateSignupRequest(ctx context.Context, sr *models.WorkerSignupRequest) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	sr.Status = models.RequestPending
	if err := tx.QueryRow(ctx, `
		INSERT INTO worker_signup_requests (user_id, name, department, city)
		VALUES ($1,$2,$3,$4)
		RETURNING id, requested_at
	`, sr.UserID, sr.Name, sr.Department, sr.City).Scan(&sr.ID, &sr.RequestedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET role=$1, updated_at=now() WHERE id=$2
	`, models.RoleWorkerPending, sr.UserID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *RequestRepo) GetSignupRequest(ctx context.Context, id string) (*models.WorkerSignupRequest, error) {
	var sr models.WorkerSignupRequest
	err := scanSignupRequest(r.db.QueryRow(ctx,
		`SELECT `+signupReqCols+` FROM worker_signup_requests WHERE id = $1`, id), &sr)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &sr, nil
}

func (r *RequestRepo) ListSignupRequests(ctx context.Context, status string) ([]models.WorkerSignupRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if s := strings.TrimSpace(status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "status = $"+itoa(len(args)))
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+signupReqCols+` FROM worker_signup_requests
		WHERE `+strings.Join(clauses, " AND ")+`
		ORDER BY requested_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WorkerSignupRequest
	for rows.Next() {
		var sr models.WorkerSignupRequest
		if err := scanSignupRequest(rows, &sr); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// DecideSignupRequest resolves a pending request: approve promotes the user
// to worker, reject returns them to plain user. Request row and role change
// commit together.
func (r *RequestRepo) DecideSignupRequest(ctx context.Context, id, adminID string, approve bool) (*models.WorkerSignupRequest, error) {
	newStatus := models.RequestRejected
	newRole := models.RoleUser
	if approve {
		newStatus = models.RequestApproved
		newRole = models.RoleWorker
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var sr models.WorkerSignupRequest
	err = tx.QueryRow(ctx, `
		UPDATE worker_signup_requests
		SET status=$1, decided_by=$2, decided_at=now()
		WHERE id=$3 AND status=$4
		RETURNING `+signupReqCols+`
	`, newStatus, adminID, id, models.RequestPending).
		Scan(&sr.ID, &sr.UserID, &sr.Name, &sr.Department, &sr.City, &sr.Status,
			&sr.DecidedBy, &sr.RequestedAt, &sr.DecidedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrConflict
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET role=$1, updated_at=now() WHERE id=$2
	`, newRole, sr.UserID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &sr, nil
}
