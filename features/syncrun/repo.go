package syncrun

import (
	"context"
	"database/sql"
)

type Repository interface {
	Save(ctx context.Context, run *SyncRun) error
	List(ctx context.Context, orgID string, limit int) ([]SyncRun, error)
	Count(ctx context.Context, orgID string) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, run *SyncRun) error {
	query := `INSERT INTO sync_runs (organization_id, synced, errors, skipped, duration_ms) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, run.OrganizationID, run.Synced, run.Errors, run.Skipped, run.DurationMS).
		Scan(&run.ID, &run.CreatedAt)
}

func (r *PostgresRepo) List(ctx context.Context, orgID string, limit int) ([]SyncRun, error) {
	query := `SELECT id, organization_id, synced, errors, skipped, duration_ms, created_at FROM sync_runs WHERE organization_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var sr SyncRun
		if err := rows.Scan(&sr.ID, &sr.OrganizationID, &sr.Synced, &sr.Errors, &sr.Skipped, &sr.DurationMS, &sr.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, sr)
	}
	return runs, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context, orgID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM sync_runs WHERE organization_id = $1`
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}
