package extract

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// String literals shown by the Tj / TJ text operators. Escaped parens and
// backslashes inside the literal are allowed.
var pdfTextRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*(?:Tj|'|")|\[((?:[^\[\]\\]|\\.)*)\]\s*TJ`)

var pdfLiteralRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)

// extractPDF returns the concatenated page text and the page count. The
// page content streams are decoded by pdfcpu; text is recovered from the
// text-showing operators, which is good enough for embedding purposes but
// does not reconstruct layout.
func extractPDF(data []byte) (string, int, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return "", 0, fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return "", 0, fmt.Errorf("validate pdf: %w", err)
	}

	var b strings.Builder
	for page := 1; page <= ctx.PageCount; page++ {
		r, err := pdfcpu.ExtractPageContent(ctx, page)
		if err != nil {
			return "", 0, fmt.Errorf("extract page %d: %w", page, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return "", 0, fmt.Errorf("read page %d: %w", page, err)
		}
		if text := textFromContent(content); text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}
	return b.String(), ctx.PageCount, nil
}

// textFromContent pulls the string arguments of Tj/'/"/TJ operators out of
// a decoded content stream.
func textFromContent(content []byte) string {
	var parts []string
	for _, m := range pdfTextRe.FindAllSubmatch(content, -1) {
		if len(m[1]) > 0 {
			parts = append(parts, unescapePDFString(string(m[1])))
			continue
		}
		// TJ takes an array mixing string literals and kerning numbers.
		for _, lit := range pdfLiteralRe.FindAllSubmatch(m[2], -1) {
			parts = append(parts, unescapePDFString(string(lit[1])))
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func unescapePDFString(s string) string {
	replacer := strings.NewReplacer(
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
	)
	return replacer.Replace(s)
}
