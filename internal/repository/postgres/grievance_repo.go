package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AG-1laksh/JanPath-sub001/internal/models"
	"github.com/AG-1laksh/JanPath-sub001/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GrievanceRepo struct{ db *pgxpool.Pool }

func NewGrievanceRepo(db *pgxpool.Pool) *GrievanceRepo { return &GrievanceRepo{db: db} }

const grievanceCols = `
	g.id, g.title, g.description, g.category, g.priority, g.status,
	COALESCE(g.image_base64, ''), g.user_id, COALESCE(g.assigned_worker_id::text, ''),
	g.created_at, g.updated_at,
	COALESCE(w.name, ''), COALESCE(u.name, '')`

const grievanceJoins = `
	FROM grievances g
	LEFT JOIN users w ON w.id = g.assigned_worker_id
	LEFT JOIN users u ON u.id = g.user_id`

func scanGrievance(row pgx.Row, g *models.Grievance) error {
	return row.Scan(
		&g.ID, &g.Title, &g.Description, &g.Category, &g.Priority, &g.Status,
		&g.ImageBase64, &g.UserID, &g.AssignedWorkerID,
		&g.CreatedAt, &g.UpdatedAt,
		&g.WorkerName, &g.UserName,
	)
}

// -----------------------------------------------------------------------------
// Create: grievance + initial status log, one transaction
// -----------------------------------------------------------------------------

// Create inserts the grievance with status Submitted and the matching
// "Complaint registered" log row. The two inserts commit together or not
// at all.
func (r *GrievanceRepo) Create(ctx context.Context, g *models.Grievance, remarks string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO grievances (title, description, category, priority, status, image_base64, user_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at
	`,
		g.Title, g.Description, g.Category, g.Priority, models.StatusSubmitted,
		nullIfEmpty(g.ImageBase64), g.UserID,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return err
	}
	g.Status = models.StatusSubmitted

	if _, err := tx.Exec(ctx, `
		INSERT INTO status_logs (grievance_id, status, updated_by, remarks)
		VALUES ($1,$2,$3,$4)
	`, g.ID, models.StatusSubmitted, g.UserID, remarks); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func (r *GrievanceRepo) Get(ctx context.Context, id string) (*models.Grievance, error) {
	var g models.Grievance
	err := scanGrievance(r.db.QueryRow(ctx,
		`SELECT `+grievanceCols+grievanceJoins+` WHERE g.id = $1`, id), &g)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *GrievanceRepo) List(ctx context.Context, f repository.GrievanceFilter) ([]models.Grievance, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	whereSQL, args := buildGrievanceWhere(f)

	sql := fmt.Sprintf(`
		SELECT %s %s
		%s
		ORDER BY g.created_at DESC
		LIMIT $%d OFFSET $%d
	`, grievanceCols, grievanceJoins, whereSQL, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Grievance
	for rows.Next() {
		var g models.Grievance
		if err := scanGrievance(rows, &g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *GrievanceRepo) Count(ctx context.Context, f repository.GrievanceFilter) (int, error) {
	whereSQL, args := buildGrievanceWhere(f)
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM grievances g `+whereSQL, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GrievanceRepo) Logs(ctx context.Context, grievanceID string) ([]models.StatusLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, grievance_id, status, updated_by, remarks, created_at
		FROM status_logs
		WHERE grievance_id = $1
		ORDER BY created_at ASC
	`, grievanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StatusLog
	for rows.Next() {
		var l models.StatusLog
		if err := rows.Scan(&l.ID, &l.GrievanceID, &l.Status, &l.UpdatedBy, &l.Remarks, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------
// Transition: CAS-guarded status update + log append, one transaction
// -----------------------------------------------------------------------------

// Transition performs `UPDATE ... WHERE id AND status = from` so a stale
// caller (wrong predecessor, or a concurrent admin who won the race) gets
// ErrConflict instead of clobbering the row, then appends the status log.
func (r *GrievanceRepo) Transition(ctx context.Context, id, from, to, actorID, workerID, remarks string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var ct int64
	switch {
	case to == models.StatusAssigned:
		res, err := tx.Exec(ctx, `
			UPDATE grievances
			SET status = $1, assigned_worker_id = $2, updated_at = now()
			WHERE id = $3 AND status = $4
		`, to, workerID, id, from)
		if err != nil {
			return err
		}
		ct = res.RowsAffected()
	case !models.RequiresWorker(to):
		// Rejected and Closed leave the worked set; the log keeps who did what.
		res, err := tx.Exec(ctx, `
			UPDATE grievances
			SET status = $1, assigned_worker_id = NULL, updated_at = now()
			WHERE id = $2 AND status = $3
		`, to, id, from)
		if err != nil {
			return err
		}
		ct = res.RowsAffected()
	default:
		res, err := tx.Exec(ctx, `
			UPDATE grievances
			SET status = $1, updated_at = now()
			WHERE id = $2 AND status = $3
		`, to, id, from)
		if err != nil {
			return err
		}
		ct = res.RowsAffected()
	}
	if ct == 0 {
		return repository.ErrConflict
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO status_logs (grievance_id, status, updated_by, remarks)
		VALUES ($1,$2,$3,$4)
	`, id, to, actorID, remarks); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// -----------------------------------------------------------------------------
// Reporting counters (used by /api/reports)
// -----------------------------------------------------------------------------

// CountByStatus counts grievances IN or NOT IN the given statuses.
func (r *GrievanceRepo) CountByStatus(ctx context.Context, statuses []string, inclusive bool) (int, error) {
	op := "NOT IN"
	if inclusive {
		op = "IN"
	}
	sql := `SELECT COUNT(*) FROM grievances WHERE status ` + op + ` (SELECT UNNEST($1::text[]))`
	var n int
	if err := r.db.QueryRow(ctx, sql, statuses).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GrievanceRepo) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM grievances WHERE status = 'Completed' AND updated_at >= $1`, since).Scan(&n)
	return n, err
}

func (r *GrievanceRepo) CountOpenByPriorities(ctx context.Context, prios []string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM grievances
		WHERE status NOT IN ('Completed','Rejected','Closed') AND priority = ANY($1)
	`, prios).Scan(&n)
	return n, err
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func buildGrievanceWhere(f repository.GrievanceFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(f.Q); s != "" {
		p := "%" + s + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(g.title ILIKE $"+itoa(len(args)-1)+" OR g.description ILIKE $"+itoa(len(args))+")")
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "g.status = $"+itoa(len(args)))
	}
	if p := strings.TrimSpace(f.Priority); p != "" {
		args = append(args, p)
		clauses = append(clauses, "g.priority = $"+itoa(len(args)))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		clauses = append(clauses, "g.category = $"+itoa(len(args)))
	}
	if u := strings.TrimSpace(f.UserID); u != "" {
		args = append(args, u)
		clauses = append(clauses, "g.user_id = $"+itoa(len(args)))
	}
	if w := strings.TrimSpace(f.WorkerID); w != "" {
		args = append(args, w)
		clauses = append(clauses, "g.assigned_worker_id = $"+itoa(len(args)))
	}
	if f.Unassigned {
		clauses = append(clauses, "g.assigned_worker_id IS NULL")
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// small helper to avoid fmt on the hot path.
func itoa(i int) string { return strconv.Itoa(i) }
