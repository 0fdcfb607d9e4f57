package logger

import (
	"context"
	"log/slog"

	"voxboard/backend/internal/middleware"
)

// ContextHandler decorates a slog handler with the request correlation id
// taken from the context, so every log line of a request carries it.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(middleware.CorrelationKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}
