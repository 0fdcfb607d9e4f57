package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"voxboard/backend/internal/middleware"
)

type CallLogRepo interface {
	Count(ctx context.Context, orgID string) (int, error)
}

type SyncRunRepo interface {
	Count(ctx context.Context, orgID string) (int, error)
}

type ChunkCounter interface {
	CountChunks(ctx context.Context) (int, error)
}

type Handler struct {
	callLogs CallLogRepo
	syncRuns SyncRunRepo
	chunks   ChunkCounter
}

func NewHandler(c CallLogRepo, s SyncRunRepo, ch ChunkCounter) *Handler {
	return &Handler{callLogs: c, syncRuns: s, chunks: ch}
}

type StatsResponse struct {
	CallLogs int `json:"call_logs"`
	SyncRuns int `json:"sync_runs"`
	Chunks   int `json:"chunks"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)
	orgID := r.URL.Query().Get("organization_id")
	if orgID == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "organization_id is required", http.StatusBadRequest)
		return
	}

	slog.InfoContext(ctx, "getting stats", "organizationId", orgID, "correlationId", correlationID)

	cCount, err := h.callLogs.Count(ctx, orgID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count call logs", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count call logs", http.StatusInternalServerError)
		return
	}

	sCount, err := h.syncRuns.Count(ctx, orgID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count sync runs", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count sync runs", http.StatusInternalServerError)
		return
	}

	// chunk count is store-wide; the vector backend has no per-tenant
	// aggregate (see the search over-fetch note in internal/knowledge)
	chCount, err := h.chunks.CountChunks(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count chunks", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count chunks", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{CallLogs: cCount, SyncRuns: sCount, Chunks: chCount}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
