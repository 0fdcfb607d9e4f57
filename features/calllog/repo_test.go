package calllog

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepo_GetIntegration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"organization_id", "provider", "api_key", "active"}).
			AddRow("org-1", "elevenlabs", "secret", true)
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE organization_id = $1 AND provider = $2 AND active = true`)).
			WithArgs("org-1", "elevenlabs").
			WillReturnRows(rows)

		integ, err := repo.GetIntegration(context.Background(), "org-1", "elevenlabs")
		require.NoError(t, err)
		require.NotNil(t, integ)
		assert.Equal(t, "secret", integ.APIKey)
		assert.Equal(t, "elevenlabs", integ.Provider)
	})

	t.Run("Absent Returns Nil Nil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE organization_id = $1 AND provider = $2 AND active = true`)).
			WithArgs("org-2", "elevenlabs").
			WillReturnRows(sqlmock.NewRows([]string{"organization_id", "provider", "api_key", "active"}))

		integ, err := repo.GetIntegration(context.Background(), "org-2", "elevenlabs")
		require.NoError(t, err)
		assert.Nil(t, integ)
	})

	// An org holding another provider's active credential must not see it
	// returned for this provider; the lookup is keyed by both columns.
	t.Run("Other Provider Row Not Returned", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE organization_id = $1 AND provider = $2 AND active = true`)).
			WithArgs("org-3", "elevenlabs").
			WillReturnRows(sqlmock.NewRows([]string{"organization_id", "provider", "api_key", "active"}))

		integ, err := repo.GetIntegration(context.Background(), "org-3", "elevenlabs")
		require.NoError(t, err)
		assert.Nil(t, integ)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	rows := sqlmock.NewRows([]string{"id", "organization_id", "email", "name"}).
		AddRow("u-1", "org-1", "ops@acme.test", "Ops")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs("u-1").
		WillReturnRows(rows)

	user, err := repo.GetUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "org-1", user.OrganizationID)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs("u-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err = repo.GetUser(context.Background(), "u-missing")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetByExternalID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	now := time.Now()

	t.Run("Found Decodes Transcript", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "organization_id", "agent_id", "agent_name", "external_id", "status", "duration_seconds", "cost", "transcript", "audio_url", "started_at", "created_at"}).
			AddRow("id-1", "org-1", "a-1", "Support", "c-1", "done", 120, 0.16, []byte(`[{"role":"agent","message":"hi","offsetSeconds":0}]`), "/api/call-audio/c-1", now, now)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM call_logs WHERE organization_id = $1 AND external_id = $2`)).
			WithArgs("org-1", "c-1").
			WillReturnRows(rows)

		log, err := repo.GetByExternalID(context.Background(), "org-1", "c-1")
		require.NoError(t, err)
		require.NotNil(t, log)
		require.Len(t, log.Transcript, 1)
		assert.Equal(t, "hi", log.Transcript[0].Message)
	})

	t.Run("Absent Returns Nil Nil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM call_logs WHERE organization_id = $1 AND external_id = $2`)).
			WithArgs("org-1", "c-missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		log, err := repo.GetByExternalID(context.Background(), "org-1", "c-missing")
		require.NoError(t, err)
		assert.Nil(t, log)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	log := &CallLog{
		ID:              "id-1",
		OrganizationID:  "org-1",
		AgentID:         "a-1",
		AgentName:       "Support",
		ExternalID:      "c-1",
		Status:          "done",
		DurationSeconds: 120,
		Cost:            0.16,
		Transcript:      []TranscriptTurn{{Role: "agent", Message: "hi"}},
		AudioURL:        "/api/call-audio/c-1",
		StartedAt:       time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO call_logs`)).
		WithArgs(log.ID, log.OrganizationID, log.AgentID, log.AgentName, log.ExternalID,
			log.Status, log.DurationSeconds, log.Cost, sqlmock.AnyArg(), log.AudioURL, log.StartedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), log))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_CreateConflictIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (organization_id, external_id) DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Create(context.Background(), &CallLog{ID: "id-1", ExternalID: "c-1", StartedAt: time.Now()})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetAgents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	rows := sqlmock.NewRows([]string{"id", "organization_id", "external_id", "name"}).
		AddRow("a-1", "org-1", "ext-a1", "Sales").
		AddRow("a-2", "org-1", "ext-a2", "Support")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM agents WHERE organization_id = $1`)).
		WithArgs("org-1").
		WillReturnRows(rows)

	agents, err := repo.GetAgents(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "ext-a1", agents[0].ExternalID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_ListAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "organization_id", "agent_id", "agent_name", "external_id", "status", "duration_seconds", "cost", "transcript", "audio_url", "started_at", "created_at"}).
		AddRow("id-1", "org-1", "a-1", "Support", "c-1", "done", 120, 0.16, []byte(`[]`), "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM call_logs WHERE organization_id = $1 ORDER BY started_at DESC LIMIT $2 OFFSET $3`)).
		WithArgs("org-1", 50, 0).
		WillReturnRows(rows)

	logs, err := repo.List(context.Background(), "org-1", 50, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM call_logs WHERE organization_id = $1`)).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
