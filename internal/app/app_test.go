package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxboard/backend/internal/adapter/voiceapi"
	"voxboard/backend/internal/config"
	"voxboard/backend/internal/knowledge"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

type stubBackend struct {
	chunks []knowledge.Chunk
}

func (b *stubBackend) StoreChunk(ctx context.Context, chunk knowledge.Chunk) error {
	b.chunks = append(b.chunks, chunk)
	return nil
}

func (b *stubBackend) NearVector(ctx context.Context, vec []float32, limit int) ([]knowledge.Chunk, error) {
	return b.chunks, nil
}

func (b *stubBackend) ListChunks(ctx context.Context) ([]knowledge.Chunk, error) {
	return b.chunks, nil
}

func (b *stubBackend) DeleteChunk(ctx context.Context, id string) error { return nil }

func (b *stubBackend) CountChunks(ctx context.Context) (int, error) { return len(b.chunks), nil }

type stubVoice struct{}

func (stubVoice) GetConversations(ctx context.Context, apiKey, agentID string, pageSize int) (*voiceapi.ConversationsPage, error) {
	return &voiceapi.ConversationsPage{}, nil
}

func (stubVoice) GetConversation(ctx context.Context, apiKey, conversationID string) (*voiceapi.ConversationDetail, error) {
	return &voiceapi.ConversationDetail{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		ChunkTargetSize: 1000,
		ChunkOverlap:    200,
		SyncPageSize:    100,
		SyncBatchSize:   10,
		MaxUploadSizeMB: 50,
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(testConfig(), db, &stubBackend{}, stubEmbedder{}, stubVoice{})
}

func TestApp_Health(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestApp_RoutesRegistered(t *testing.T) {
	a := newTestApp(t)

	// A request with a wrong method on a registered pattern must not 404.
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/search", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_CORSPreflight(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/documents", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApp_SearchValidation(t *testing.T) {
	a := newTestApp(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", nil)
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}
