package extract

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is returned when a file's bytes do not parse as the
// format its name declares. Ingestion of that document must not fall back
// to raw text.
var ErrMalformedInput = errors.New("malformed input")

// ExtractionError wraps a failure from a format-specific extractor. It is
// fatal to the whole document: partial extraction is never attempted.
type ExtractionError struct {
	FileType string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.FileType, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
