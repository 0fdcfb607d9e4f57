package document

import (
	"context"

	"github.com/google/uuid"

	"voxboard/backend/internal/extract"
	"voxboard/backend/internal/knowledge"
)

// KnowledgeStore is the slice of the chunk store this feature consumes.
type KnowledgeStore interface {
	AddDocument(ctx context.Context, id, name, content string, agentIDs []string, organizationID string) (int, error)
	Search(ctx context.Context, query, agentID, organizationID string, limit int) ([]knowledge.SearchResult, error)
	GetDocuments(ctx context.Context, organizationID string) ([]knowledge.DocumentSummary, error)
	DeleteDocument(ctx context.Context, documentID, organizationID string) error
	GetDocumentContent(ctx context.Context, documentID, organizationID string) (string, error)
}

type TextExtractor interface {
	Extract(data []byte, name string) (*extract.Result, error)
}

type Service struct {
	store     KnowledgeStore
	extractor TextExtractor
}

func NewService(store KnowledgeStore, extractor TextExtractor) *Service {
	return &Service{store: store, extractor: extractor}
}

// UploadResult reports how a file was ingested.
type UploadResult struct {
	DocumentID string `json:"id"`
	Name       string `json:"name"`
	Chunks     int    `json:"chunks"`
}

// Upload extracts text from the raw file and ingests it under a fresh
// document id.
func (s *Service) Upload(ctx context.Context, filename string, data []byte, agentIDs []string, organizationID string) (*UploadResult, error) {
	extracted, err := s.extractor.Extract(data, filename)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	chunks, err := s.store.AddDocument(ctx, id, filename, extracted.Text, agentIDs, organizationID)
	if err != nil {
		return nil, err
	}

	return &UploadResult{DocumentID: id, Name: filename, Chunks: chunks}, nil
}

func (s *Service) Search(ctx context.Context, query, agentID, organizationID string, limit int) ([]knowledge.SearchResult, error) {
	return s.store.Search(ctx, query, agentID, organizationID, limit)
}

func (s *Service) List(ctx context.Context, organizationID string) ([]knowledge.DocumentSummary, error) {
	return s.store.GetDocuments(ctx, organizationID)
}

func (s *Service) Content(ctx context.Context, documentID, organizationID string) (string, error) {
	return s.store.GetDocumentContent(ctx, documentID, organizationID)
}

func (s *Service) Delete(ctx context.Context, documentID, organizationID string) error {
	return s.store.DeleteDocument(ctx, documentID, organizationID)
}
