package text

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Options controls chunk sizing. Overlap must be smaller than TargetSize.
type Options struct {
	TargetSize int
	Overlap    int
}

// DefaultOptions returns the sizing used for knowledge base ingestion.
func DefaultOptions() Options {
	return Options{TargetSize: 1000, Overlap: 200}
}

// Sentence terminators searched for when choosing a cut point, in no
// particular priority — the rightmost occurrence wins.
var terminators = []string{". ", "! ", "? ", "\n"}

var (
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	newlineRunRe = regexp.MustCompile(`\s*\n\s*`)
)

// Normalize collapses runs of spaces and tabs to a single space and any
// whitespace run containing a newline to a single newline, then trims.
// Newlines survive so they remain usable as chunk boundaries.
func Normalize(text string) string {
	text = newlineRunRe.ReplaceAllString(text, "\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Chunk splits text into overlapping, boundary-aware segments. The input is
// whitespace-normalized first; if the result fits in TargetSize it is
// returned as the sole chunk. Otherwise each window of TargetSize bytes is
// cut at the rightmost sentence terminator, falling back to the rightmost
// space, falling back to a hard break inside an unbreakable token. The next
// window starts Overlap bytes before the previous cut, unless that would not
// advance, in which case it starts exactly at the cut to guarantee
// termination. Empty chunks are dropped.
//
// Chunk is deterministic: the same text and options always produce the same
// sequence.
func Chunk(text string, opts Options) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}
	if len(norm) <= opts.TargetSize {
		return []string{norm}
	}

	var chunks []string
	start := 0
	for start < len(norm) {
		end := start + opts.TargetSize
		if end >= len(norm) {
			if c := strings.TrimSpace(norm[start:]); c != "" {
				chunks = append(chunks, c)
			}
			break
		}

		cut := cutPoint(norm[start:end])
		if cut <= 0 {
			// Hard break: back off to a rune boundary so a multi-byte rune
			// is never split across chunks.
			cut = opts.TargetSize
			for cut > 0 && !utf8.RuneStart(norm[start+cut]) {
				cut--
			}
			if cut == 0 {
				cut = opts.TargetSize
			}
		}
		if c := strings.TrimSpace(norm[start : start+cut]); c != "" {
			chunks = append(chunks, c)
		}

		next := start + cut - opts.Overlap
		if next <= start {
			// Degenerate short remainder: overlapping would loop forever.
			next = start + cut
		}
		// The overlap step counts bytes, so realign to the next rune start.
		// next never passes start+cut, which is itself a rune boundary.
		for next < len(norm) && !utf8.RuneStart(norm[next]) {
			next++
		}
		start = next
	}
	return chunks
}

// cutPoint returns the offset within window to cut at, or -1 when only a
// hard break is possible. A terminator found at offset 0 does not count: the
// cut must land strictly inside the window.
func cutPoint(window string) int {
	best := -1
	for _, t := range terminators {
		if i := strings.LastIndex(window, t); i > 0 {
			if c := i + len(t); c > best {
				best = c
			}
		}
	}
	if best > 0 {
		return best
	}
	if i := strings.LastIndex(window, " "); i > 0 {
		return i
	}
	return -1
}
