// Package weaviate adapts the weaviate client to the knowledge store's
// ChunkBackend interface.
package weaviate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"voxboard/backend/internal/knowledge"
	"voxboard/backend/internal/vector"
)

// scanLimit bounds full-class scans used by listing, reassembly and
// deletion. Listing is a scan by contract, so the backend pages through in
// scanLimit steps.
const scanLimit = 10000

type Backend struct {
	client *weaviate.Client

	mu      sync.Mutex
	ensured bool
}

func NewBackend(client *weaviate.Client) *Backend {
	return &Backend{client: client}
}

// ensureSchema lazily creates the KnowledgeChunk class before the first
// insert. A failed attempt is retried on the next insert rather than
// cached.
func (b *Backend) ensureSchema(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ensured {
		return nil
	}
	if err := vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(b.client)); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	b.ensured = true
	return nil
}

func (b *Backend) StoreChunk(ctx context.Context, chunk knowledge.Chunk) error {
	if err := b.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := b.client.Data().Creator().
		WithClassName(vector.ClassName).
		WithID(chunk.ID).
		WithProperties(map[string]interface{}{
			"content":        chunk.Content,
			"documentId":     chunk.DocumentID,
			"documentName":   chunk.DocumentName,
			"organizationId": chunk.OrganizationID,
			"agentIds":       chunk.AgentIDs,
			"chunkIndex":     chunk.ChunkIndex,
			"totalChunks":    chunk.TotalChunks,
			"createdAt":      chunk.CreatedAt.Format(time.RFC3339),
		}).
		WithVector(chunk.Vector).
		Do(ctx)
	return err
}

func (b *Backend) NearVector(ctx context.Context, vec []float32, limit int) ([]knowledge.Chunk, error) {
	nearVector := b.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := append(chunkFields(),
		graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}}})

	res, err := b.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}
	return decodeChunks(jsonObjectData(res.Data)), nil
}

func (b *Backend) ListChunks(ctx context.Context) ([]knowledge.Chunk, error) {
	fields := append(chunkFields(),
		graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}}})

	var all []knowledge.Chunk
	offset := 0
	for {
		res, err := b.client.GraphQL().Get().
			WithClassName(vector.ClassName).
			WithLimit(scanLimit).
			WithOffset(offset).
			WithFields(fields...).
			Do(ctx)
		if err != nil {
			return nil, err
		}
		if len(res.Errors) > 0 {
			// A missing class is an empty store, not a failure: nothing
			// was ever ingested.
			if b.classAbsent(ctx) {
				return nil, nil
			}
			return nil, fmt.Errorf("graphql error: %v", res.Errors)
		}
		page := decodeChunks(jsonObjectData(res.Data))
		all = append(all, page...)
		if len(page) < scanLimit {
			return all, nil
		}
		offset += scanLimit
	}
}

func (b *Backend) DeleteChunk(ctx context.Context, id string) error {
	return b.client.Data().Deleter().
		WithClassName(vector.ClassName).
		WithID(id).
		Do(ctx)
}

func (b *Backend) CountChunks(ctx context.Context) (int, error) {
	res, err := b.client.GraphQL().Aggregate().
		WithClassName(vector.ClassName).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		if b.classAbsent(ctx) {
			return 0, nil
		}
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	if agg, ok := res.Data["Aggregate"].(map[string]interface{}); ok {
		if rows, ok := agg[vector.ClassName].([]interface{}); ok && len(rows) > 0 {
			if row, ok := rows[0].(map[string]interface{}); ok {
				if meta, ok := row["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						return int(count), nil
					}
				}
			}
		}
	}
	return 0, nil
}

func (b *Backend) classAbsent(ctx context.Context) bool {
	exists, err := b.client.Schema().ClassExistenceChecker().
		WithClassName(vector.ClassName).Do(ctx)
	return err == nil && !exists
}

func chunkFields() []graphql.Field {
	return []graphql.Field{
		{Name: "content"},
		{Name: "documentId"},
		{Name: "documentName"},
		{Name: "organizationId"},
		{Name: "agentIds"},
		{Name: "chunkIndex"},
		{Name: "totalChunks"},
	}
}

// jsonObjectData converts the client's response map to the plain
// map[string]interface{} shape decodeChunks works on; models.JSONObject is a
// defined type over interface{}, so the map types are not convertible.
func jsonObjectData(data map[string]models.JSONObject) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func decodeChunks(data map[string]interface{}) []knowledge.Chunk {
	var chunks []knowledge.Chunk
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	rows, ok := get[vector.ClassName].([]interface{})
	if !ok {
		return nil
	}
	for _, r := range rows {
		props, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		var c knowledge.Chunk
		if v, ok := props["content"].(string); ok {
			c.Content = v
		}
		if v, ok := props["documentId"].(string); ok {
			c.DocumentID = v
		}
		if v, ok := props["documentName"].(string); ok {
			c.DocumentName = v
		}
		if v, ok := props["organizationId"].(string); ok {
			c.OrganizationID = v
		}
		if v, ok := props["agentIds"].([]interface{}); ok {
			for _, a := range v {
				if s, ok := a.(string); ok {
					c.AgentIDs = append(c.AgentIDs, s)
				}
			}
		}
		if v, ok := props["chunkIndex"].(float64); ok {
			c.ChunkIndex = int(v)
		}
		if v, ok := props["totalChunks"].(float64); ok {
			c.TotalChunks = int(v)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if id, ok := additional["id"].(string); ok {
				c.ID = id
			}
			if d, ok := additional["distance"].(float64); ok {
				c.Distance = float32(d)
			}
		}
		chunks = append(chunks, c)
	}
	return chunks
}
