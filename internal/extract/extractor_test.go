package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PlainFormats(t *testing.T) {
	e := New()

	for _, name := range []string{"notes.txt", "readme.md", "data.csv", "mystery.bin"} {
		res, err := e.Extract([]byte("hello world"), name)
		require.NoError(t, err, name)
		assert.Equal(t, "hello world", res.Text)
		assert.Zero(t, res.Pages)
	}
}

func TestExtract_JSON(t *testing.T) {
	e := New()

	t.Run("Reindents Stable", func(t *testing.T) {
		res, err := e.Extract([]byte(`{"b":1,   "a":[1,2]}`), "config.json")
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": 1\n}", res.Text)

		// Same document, different formatting: identical output.
		res2, err := e.Extract([]byte("{\"a\": [1, 2], \"b\": 1}"), "other.json")
		require.NoError(t, err)
		assert.Equal(t, res.Text, res2.Text)
	})

	t.Run("Malformed Is Hard Error", func(t *testing.T) {
		_, err := e.Extract([]byte(`{"a":`), "broken.json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedInput))

		var extErr *ExtractionError
		require.ErrorAs(t, err, &extErr)
		assert.Equal(t, "json", extErr.FileType)
	})
}

func TestExtract_Docx(t *testing.T) {
	e := New()

	t.Run("Extracts Paragraph Text", func(t *testing.T) {
		docXML := `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r><r><t> More of it.</t></r></p>
    <p><r><t>Second paragraph.</t></r></p>
  </body>
</document>`
		res, err := e.Extract(buildDocx(t, docXML), "report.docx")
		require.NoError(t, err)
		assert.Equal(t, "First paragraph. More of it.\nSecond paragraph.", res.Text)
	})

	t.Run("Not A Zip", func(t *testing.T) {
		_, err := e.Extract([]byte("definitely not a zip"), "report.docx")
		var extErr *ExtractionError
		require.ErrorAs(t, err, &extErr)
		assert.Equal(t, "docx", extErr.FileType)
	})
}

func TestExtract_PDFMalformed(t *testing.T) {
	e := New()
	_, err := e.Extract([]byte("%PDF-nope"), "scan.pdf")
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "pdf", extErr.FileType)
}

func TestTextFromContent(t *testing.T) {
	content := []byte(`BT /F1 12 Tf (Hello) Tj (World\(!\)) Tj [(Ker)-120(ned)] TJ ET`)
	assert.Equal(t, "Hello World(!) Ker ned", textFromContent(content))

	assert.Equal(t, "", textFromContent([]byte("no text operators here")))
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
