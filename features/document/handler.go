package document

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"voxboard/backend/internal/extract"
	"voxboard/backend/internal/knowledge"
	"voxboard/backend/internal/middleware"
)

var validExts = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".json": true, ".docx": true, ".pdf": true,
}

type Handler struct {
	service       *Service
	validate      *validator.Validate
	maxUploadSize int64
}

func NewHandler(service *Service, maxUploadSizeMB int64) *Handler {
	return &Handler{
		service:       service,
		validate:      validator.New(),
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.writeError(ctx, w, "BAD_REQUEST", "File too large", http.StatusBadRequest)
		return
	}

	organizationID := r.FormValue("organization_id")
	if organizationID == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "organization_id is required", http.StatusBadRequest)
		return
	}

	var agentIDs []string
	if raw := r.FormValue("agent_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				agentIDs = append(agentIDs, id)
			}
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(ctx, w, "BAD_REQUEST", "Unable to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !validExts[ext] {
		h.writeError(ctx, w, "BAD_REQUEST", "Unsupported file type", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(ctx, w, "INTERNAL_ERROR", "Failed to read file", http.StatusInternalServerError)
		return
	}

	result, err := h.service.Upload(ctx, filepath.Base(header.Filename), data, agentIDs, organizationID)
	if err != nil {
		slog.ErrorContext(ctx, "document upload failed", "filename", header.Filename, "error", err)
		if errors.Is(err, extract.ErrMalformedInput) {
			h.writeError(ctx, w, "MALFORMED_FILE", err.Error(), http.StatusBadRequest)
			return
		}
		var embErr *knowledge.EmbeddingError
		if errors.As(err, &embErr) {
			h.writeError(ctx, w, "EMBEDDING_FAILED", err.Error(), http.StatusBadGateway)
			return
		}
		h.writeError(ctx, w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": result}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	organizationID := r.URL.Query().Get("organization_id")
	if organizationID == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "organization_id is required", http.StatusBadRequest)
		return
	}

	docs, err := h.service.List(ctx, organizationID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list documents", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	if docs == nil {
		docs = []knowledge.DocumentSummary{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": docs,
		"meta": map[string]int{"count": len(docs)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	organizationID := r.URL.Query().Get("organization_id")
	if organizationID == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "organization_id is required", http.StatusBadRequest)
		return
	}

	content, err := h.service.Content(ctx, id, organizationID)
	if err != nil {
		if errors.Is(err, knowledge.ErrDocumentNotFound) {
			h.writeError(ctx, w, "NOT_FOUND", "Document not found", http.StatusNotFound)
			return
		}
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]string{"id": id, "content": content}}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	organizationID := r.URL.Query().Get("organization_id")
	if organizationID == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "organization_id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(ctx, id, organizationID); err != nil {
		if errors.Is(err, knowledge.ErrDocumentNotFound) {
			h.writeError(ctx, w, "NOT_FOUND", "Document not found", http.StatusNotFound)
			return
		}
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type searchRequest struct {
	Query          string `json:"query" validate:"required"`
	AgentID        string `json:"agent_id" validate:"required"`
	OrganizationID string `json:"organization_id" validate:"required"`
	Limit          int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Limit == 0 {
		req.Limit = 5
	}

	results, err := h.service.Search(ctx, req.Query, req.AgentID, req.OrganizationID, req.Limit)
	if err != nil {
		slog.ErrorContext(ctx, "search failed", "error", err)
		h.writeError(ctx, w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}

	if results == nil {
		results = []knowledge.SearchResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": results,
		"meta": map[string]int{"count": len(results)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
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
