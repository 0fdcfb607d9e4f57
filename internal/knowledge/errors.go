package knowledge

import (
	"errors"
	"fmt"
)

// ErrDocumentNotFound is returned when no chunk matches the requested
// document within the organization.
var ErrDocumentNotFound = errors.New("document not found")

// EmbeddingError wraps a failure from the embedding provider. During
// ingestion it is fatal to the remaining chunks of the current document;
// chunks already written are not retracted.
type EmbeddingError struct {
	ChunkIndex int
	Err        error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding chunk %d: %v", e.ChunkIndex, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
