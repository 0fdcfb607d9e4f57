package app

import (
	"database/sql"
	"net/http"

	"voxboard/backend/features/calllog"
	"voxboard/backend/features/document"
	"voxboard/backend/features/stats"
	"voxboard/backend/features/syncrun"
	"voxboard/backend/internal/config"
	"voxboard/backend/internal/extract"
	"voxboard/backend/internal/knowledge"
	"voxboard/backend/internal/middleware"
	"voxboard/backend/internal/text"
)

type App struct {
	Handler http.Handler
}

func New(
	cfg *config.Config,
	db *sql.DB,
	backend knowledge.ChunkBackend,
	embedder knowledge.Embedder,
	voice calllog.VoiceClient,
) *App {
	store := knowledge.NewStore(embedder, backend, text.Options{
		TargetSize: cfg.ChunkTargetSize,
		Overlap:    cfg.ChunkOverlap,
	})

	// Feature: Document
	documentService := document.NewService(store, extract.New())
	documentHandler := document.NewHandler(documentService, cfg.MaxUploadSizeMB)

	// Feature: Sync runs
	syncRunRepo := syncrun.NewPostgresRepo(db)
	syncRunService := syncrun.NewService(syncRunRepo)
	syncRunHandler := syncrun.NewHandler(syncRunService)

	// Feature: Call logs
	callLogRepo := calllog.NewPostgresRepo(db)
	callLogService := calllog.NewService(callLogRepo, voice, cfg.SyncPageSize, cfg.SyncBatchSize)
	callLogHandler := calllog.NewHandler(callLogService, syncRunService)

	// Feature: Stats
	statsHandler := stats.NewHandler(callLogRepo, syncRunRepo, backend)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()

	mux.Handle("POST /documents", middleware.CorrelationID(enableCORS(documentHandler.Upload)))
	mux.Handle("GET /documents", middleware.CorrelationID(enableCORS(documentHandler.List)))
	mux.Handle("GET /documents/{id}/content", middleware.CorrelationID(enableCORS(documentHandler.Content)))
	mux.Handle("DELETE /documents/{id}", middleware.CorrelationID(enableCORS(documentHandler.Delete)))
	mux.Handle("POST /search", middleware.CorrelationID(enableCORS(documentHandler.Search)))

	mux.Handle("POST /organizations/{id}/sync", middleware.CorrelationID(enableCORS(callLogHandler.Sync)))
	mux.Handle("GET /organizations/{id}/call-logs", middleware.CorrelationID(enableCORS(callLogHandler.List)))
	mux.Handle("GET /organizations/{id}/sync-runs", middleware.CorrelationID(enableCORS(syncRunHandler.List)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{Handler: mux}
}
