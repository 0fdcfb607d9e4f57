package calllog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"voxboard/backend/internal/middleware"
)

// RunRecorder archives the outcome of a finished sync run.
type RunRecorder interface {
	Record(ctx context.Context, orgID string, synced, errs, skipped int, elapsedMS int64) error
}

type Handler struct {
	service *Service
	runs    RunRecorder
}

func NewHandler(s *Service, runs RunRecorder) *Handler {
	return &Handler{service: s, runs: runs}
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)
	orgID := r.PathValue("id")

	slog.InfoContext(ctx, "starting conversation sync", "organizationId", orgID, "correlationId", correlationID)

	summary, err := h.service.Sync(ctx, orgID)
	if err != nil {
		slog.ErrorContext(ctx, "sync failed", "organizationId", orgID, "error", err, "correlationId", correlationID)
		if errors.Is(err, ErrIntegrationNotConfigured) {
			h.writeError(ctx, w, "INTEGRATION_NOT_CONFIGURED", "Voice integration is not configured for this organization", http.StatusUnprocessableEntity)
			return
		}
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	if h.runs != nil {
		if err := h.runs.Record(ctx, orgID, summary.Synced, summary.Errors, summary.Skipped, summary.ElapsedMS); err != nil {
			slog.ErrorContext(ctx, "failed to record sync run", "organizationId", orgID, "error", err, "correlationId", correlationID)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": summary}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)
	orgID := r.PathValue("id")

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	logs, err := h.service.List(ctx, orgID, limit, offset)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list call logs", "organizationId", orgID, "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	if logs == nil {
		logs = []CallLog{}
	}

	total, err := h.service.Count(ctx, orgID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count call logs", "organizationId", orgID, "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": logs,
		"meta": map[string]int{"count": len(logs), "total": total},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
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
