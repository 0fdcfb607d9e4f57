package calllog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Repository interface {
	GetIntegration(ctx context.Context, orgID, provider string) (*Integration, error)
	GetAgents(ctx context.Context, orgID string) ([]Agent, error)
	GetUser(ctx context.Context, id string) (*User, error)
	GetByExternalID(ctx context.Context, orgID, externalID string) (*CallLog, error)
	Create(ctx context.Context, log *CallLog) error
	List(ctx context.Context, orgID string, limit, offset int) ([]CallLog, error)
	Count(ctx context.Context, orgID string) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// GetIntegration looks up one provider's credential. An organization can
// hold active integrations for several providers at once, so the provider
// is part of the key.
func (r *PostgresRepo) GetIntegration(ctx context.Context, orgID, provider string) (*Integration, error) {
	i := &Integration{}
	query := `SELECT organization_id, provider, api_key, active FROM integrations WHERE organization_id = $1 AND provider = $2 AND active = true`
	err := r.db.QueryRowContext(ctx, query, orgID, provider).Scan(&i.OrganizationID, &i.Provider, &i.APIKey, &i.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (r *PostgresRepo) GetAgents(ctx context.Context, orgID string) ([]Agent, error) {
	query := `SELECT id, organization_id, external_id, name FROM agents WHERE organization_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.OrganizationID, &a.ExternalID, &a.Name); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// GetUser resolves the tenant a dashboard session belongs to. The sync
// pipeline itself is keyed by organization id and never calls this.
func (r *PostgresRepo) GetUser(ctx context.Context, id string) (*User, error) {
	u := &User{}
	query := `SELECT id, organization_id, email, name FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.OrganizationID, &u.Email, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepo) GetByExternalID(ctx context.Context, orgID, externalID string) (*CallLog, error) {
	l := &CallLog{}
	var transcript []byte
	query := `SELECT id, organization_id, agent_id, agent_name, external_id, status, duration_seconds, cost, transcript, audio_url, started_at, created_at
		FROM call_logs WHERE organization_id = $1 AND external_id = $2`
	err := r.db.QueryRowContext(ctx, query, orgID, externalID).Scan(
		&l.ID, &l.OrganizationID, &l.AgentID, &l.AgentName, &l.ExternalID, &l.Status,
		&l.DurationSeconds, &l.Cost, &transcript, &l.AudioURL, &l.StartedAt, &l.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(transcript, &l.Transcript); err != nil {
		return nil, err
	}
	return l, nil
}

// Create persists a call log. The existence check in the sync engine runs
// before detail fetch, so two overlapping syncs can both reach this point
// with the same conversation; ON CONFLICT DO NOTHING makes the second write
// a no-op instead of a duplicate row.
func (r *PostgresRepo) Create(ctx context.Context, log *CallLog) error {
	transcript, err := json.Marshal(log.Transcript)
	if err != nil {
		return err
	}

	query := `INSERT INTO call_logs (id, organization_id, agent_id, agent_name, external_id, status, duration_seconds, cost, transcript, audio_url, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (organization_id, external_id) DO NOTHING`
	_, err = r.db.ExecContext(ctx, query,
		log.ID, log.OrganizationID, log.AgentID, log.AgentName, log.ExternalID,
		log.Status, log.DurationSeconds, log.Cost, transcript, log.AudioURL, log.StartedAt,
	)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, orgID string, limit, offset int) ([]CallLog, error) {
	query := `SELECT id, organization_id, agent_id, agent_name, external_id, status, duration_seconds, cost, transcript, audio_url, started_at, created_at
		FROM call_logs WHERE organization_id = $1 ORDER BY started_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []CallLog
	for rows.Next() {
		var l CallLog
		var transcript []byte
		if err := rows.Scan(&l.ID, &l.OrganizationID, &l.AgentID, &l.AgentName, &l.ExternalID, &l.Status,
			&l.DurationSeconds, &l.Cost, &transcript, &l.AudioURL, &l.StartedAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(transcript, &l.Transcript); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context, orgID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM call_logs WHERE organization_id = $1`
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}
