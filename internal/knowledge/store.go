// Package knowledge implements the chunked, embedded document store used
// for retrieval-augmented responses. A Store is explicitly constructed with
// its collaborators and owns no global state; its backend handle lifecycle
// belongs to the caller.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"voxboard/backend/internal/text"
)

// Chunk is one stored segment of a document, carrying denormalized document
// metadata so search can filter without a join.
type Chunk struct {
	ID             string
	DocumentID     string
	DocumentName   string
	OrganizationID string
	AgentIDs       []string
	ChunkIndex     int
	TotalChunks    int
	Content        string
	Vector         []float32
	Distance       float32
	CreatedAt      time.Time
}

// DocumentSummary is one row of the documents listing, grouped from chunks.
type DocumentSummary struct {
	DocumentID string   `json:"id"`
	Name       string   `json:"name"`
	AgentIDs   []string `json:"agent_ids"`
	ChunkCount int      `json:"chunk_count"`
}

// SearchResult is one similarity hit, ordered by ascending distance.
type SearchResult struct {
	Content      string  `json:"content"`
	DocumentName string  `json:"document_name"`
	Distance     float32 `json:"distance"`
	ChunkIndex   int     `json:"chunk_index"`
	TotalChunks  int     `json:"total_chunks"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkBackend is the persistence surface the store writes through. The
// backend must support concurrent readers; callers must not run AddDocument
// concurrently with DeleteDocument for the same document.
type ChunkBackend interface {
	StoreChunk(ctx context.Context, chunk Chunk) error
	NearVector(ctx context.Context, vector []float32, limit int) ([]Chunk, error)
	ListChunks(ctx context.Context) ([]Chunk, error)
	DeleteChunk(ctx context.Context, id string) error
	CountChunks(ctx context.Context) (int, error)
}

type Store struct {
	embedder Embedder
	backend  ChunkBackend
	opts     text.Options
}

func NewStore(embedder Embedder, backend ChunkBackend, opts text.Options) *Store {
	return &Store{embedder: embedder, backend: backend, opts: opts}
}

// AddDocument chunks content, embeds each chunk (one provider call per
// chunk) and persists chunks in index order. An embedding or storage error
// aborts the remaining chunks but does not retract chunks already written:
// the caller must treat an error as "partially ingested, re-run ingestion".
// Returns the number of chunks written.
func (s *Store) AddDocument(ctx context.Context, id, name, content string, agentIDs []string, organizationID string) (int, error) {
	chunks := text.Chunk(content, s.opts)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %s: no content to ingest", id)
	}

	now := time.Now().UTC()
	for i, c := range chunks {
		vector, err := s.embedder.Embed(ctx, c)
		if err != nil {
			return i, &EmbeddingError{ChunkIndex: i, Err: err}
		}
		chunk := Chunk{
			ID:             uuid.New().String(),
			DocumentID:     id,
			DocumentName:   name,
			OrganizationID: organizationID,
			AgentIDs:       agentIDs,
			ChunkIndex:     i,
			TotalChunks:    len(chunks),
			Content:        c,
			Vector:         vector,
			CreatedAt:      now,
		}
		if err := s.backend.StoreChunk(ctx, chunk); err != nil {
			return i, fmt.Errorf("store chunk %d of document %s: %w", i, id, err)
		}
	}

	slog.InfoContext(ctx, "document ingested", "document_id", id, "chunks", len(chunks))
	return len(chunks), nil
}

// overFetchFactor compensates for post-filtering: the nearest-neighbor
// index has no tenant filter, so limit×3 candidates are retrieved and
// filtered afterwards. A tenant whose matching chunks all fall outside the
// candidate set can be undercounted; this is a recall/latency tradeoff, not
// a correctness guarantee.
const overFetchFactor = 3

// Search embeds the query, retrieves limit×overFetchFactor nearest chunks,
// keeps only those owned by organizationID and visible to agentID, and
// truncates to limit. Results come back ordered by ascending distance.
//
// Search is always agent-scoped, so a document ingested with an empty agent
// set matches no query here; it stays reachable through GetDocuments and
// GetDocumentContent.
func (s *Store) Search(ctx context.Context, query, agentID, organizationID string, limit int) ([]SearchResult, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}

	candidates, err := s.backend.NearVector(ctx, vector, limit*overFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]SearchResult, 0, limit)
	for _, c := range candidates {
		if c.OrganizationID != organizationID {
			continue
		}
		if !slices.Contains(c.AgentIDs, agentID) {
			continue
		}
		results = append(results, SearchResult{
			Content:      c.Content,
			DocumentName: c.DocumentName,
			Distance:     c.Distance,
			ChunkIndex:   c.ChunkIndex,
			TotalChunks:  c.TotalChunks,
		})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// GetDocuments scans all chunks and groups them into one summary per
// document belonging to organizationID.
func (s *Store) GetDocuments(ctx context.Context, organizationID string) ([]DocumentSummary, error) {
	chunks, err := s.backend.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	grouped := make(map[string]*DocumentSummary)
	var order []string
	for _, c := range chunks {
		if c.OrganizationID != organizationID {
			continue
		}
		summary, ok := grouped[c.DocumentID]
		if !ok {
			summary = &DocumentSummary{
				DocumentID: c.DocumentID,
				Name:       c.DocumentName,
				AgentIDs:   c.AgentIDs,
			}
			grouped[c.DocumentID] = summary
			order = append(order, c.DocumentID)
		}
		summary.ChunkCount++
	}

	summaries := make([]DocumentSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, *grouped[id])
	}
	return summaries, nil
}

// DeleteDocument removes every chunk of the document, one delete per chunk.
// The deletion is not atomic: a crash mid-way leaves a partially deleted
// document, recoverable by deleting again.
func (s *Store) DeleteDocument(ctx context.Context, documentID, organizationID string) error {
	chunks, err := s.chunksOf(ctx, documentID, organizationID)
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if err := s.backend.DeleteChunk(ctx, c.ID); err != nil {
			return fmt.Errorf("delete chunk %d of document %s: %w", c.ChunkIndex, documentID, err)
		}
	}
	slog.InfoContext(ctx, "document deleted", "document_id", documentID, "chunks", len(chunks))
	return nil
}

// GetDocumentContent reassembles the document's text from its chunks in
// index order, joined by blank lines. The result is the chunk-boundary
// normalized text, not the original upload bytes.
func (s *Store) GetDocumentContent(ctx context.Context, documentID, organizationID string) (string, error) {
	chunks, err := s.chunksOf(ctx, documentID, organizationID)
	if err != nil {
		return "", err
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ChunkIndex < chunks[j].ChunkIndex })

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *Store) chunksOf(ctx context.Context, documentID, organizationID string) ([]Chunk, error) {
	all, err := s.backend.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	var chunks []Chunk
	for _, c := range all {
		if c.DocumentID == documentID && c.OrganizationID == organizationID {
			chunks = append(chunks, c)
		}
	}
	if len(chunks) == 0 {
		return nil, ErrDocumentNotFound
	}
	return chunks, nil
}
