package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema. Statements are idempotent so startup can run
// this unconditionally.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

		`CREATE TABLE IF NOT EXISTS users (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email       TEXT NOT NULL UNIQUE,
			name        TEXT NOT NULL,
			role        TEXT NOT NULL DEFAULT 'user',
			department  TEXT NOT NULL DEFAULT '',
			city        TEXT NOT NULL DEFAULT '',
			phone       TEXT NOT NULL DEFAULT '',
			state       TEXT NOT NULL DEFAULT '',
			address     TEXT NOT NULL DEFAULT '',
			password_h  TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS grievances (
			id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title              TEXT NOT NULL,
			description        TEXT NOT NULL,
			category           TEXT NOT NULL,
			priority           TEXT NOT NULL,
			status             TEXT NOT NULL DEFAULT 'Submitted',
			image_base64       TEXT,
			user_id            UUID NOT NULL REFERENCES users(id),
			assigned_worker_id UUID REFERENCES users(id),
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_grievances_user ON grievances (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_grievances_worker ON grievances (assigned_worker_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_grievances_status ON grievances (status)`,

		`CREATE TABLE IF NOT EXISTS status_logs (
			id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			grievance_id UUID NOT NULL REFERENCES grievances(id),
			status       TEXT NOT NULL,
			updated_by   UUID NOT NULL REFERENCES users(id),
			remarks      TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_status_logs_grievance ON status_logs (grievance_id, created_at ASC)`,

		`CREATE TABLE IF NOT EXISTS worker_requests (
			id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			grievance_id UUID NOT NULL REFERENCES grievances(id),
			worker_id    UUID NOT NULL REFERENCES users(id),
			status       TEXT NOT NULL DEFAULT 'pending',
			decided_by   UUID REFERENCES users(id),
			requested_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			decided_at   TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_worker_requests_status ON worker_requests (status, requested_at DESC)`,

		`CREATE TABLE IF NOT EXISTS worker_signup_requests (
			id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id      UUID NOT NULL REFERENCES users(id),
			name         TEXT NOT NULL,
			department   TEXT NOT NULL DEFAULT '',
			city         TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL DEFAULT 'pending',
			decided_by   UUID REFERENCES users(id),
			requested_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			decided_at   TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signup_requests_status ON worker_signup_requests (status, requested_at DESC)`,
	}

	for _, s := range stmts {
		if _, err := db.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
