package extract

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Result is the plain-text rendering of an uploaded file. Pages is only set
// for paginated formats (PDF); it is zero otherwise.
type Result struct {
	Text  string
	Pages int
}

// Extractor converts heterogeneous file encodings into plain text. It is a
// pure transform over the input bytes: no filesystem or network access.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract dispatches on the file extension of name. Plain-text formats
// decode verbatim as UTF-8, JSON is re-serialized with stable indentation,
// DOCX and PDF go through their format-specific extractors. Unknown
// extensions fall back to UTF-8 decode.
func (e *Extractor) Extract(data []byte, name string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".json":
		text, err := reindentJSON(data)
		if err != nil {
			return nil, err
		}
		return &Result{Text: text}, nil
	case ".docx":
		text, err := extractDocx(data)
		if err != nil {
			return nil, &ExtractionError{FileType: "docx", Err: err}
		}
		return &Result{Text: text}, nil
	case ".pdf":
		text, pages, err := extractPDF(data)
		if err != nil {
			return nil, &ExtractionError{FileType: "pdf", Err: err}
		}
		return &Result{Text: text, Pages: pages}, nil
	default:
		// .txt, .md, .csv and anything unrecognised.
		return &Result{Text: string(data)}, nil
	}
}

// reindentJSON parses and re-serializes with two-space indentation so the
// chunker sees one stable rendering regardless of upload formatting. A parse
// failure is a hard error — raw bytes are not used as a fallback.
func reindentJSON(data []byte) (string, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return "", &ExtractionError{FileType: "json", Err: ErrMalformedInput}
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", &ExtractionError{FileType: "json", Err: err}
	}
	return string(out), nil
}
