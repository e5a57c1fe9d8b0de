package document

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftconvert/server/pkg/utils"
)

func TestDocxRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	in := []string{"first paragraph", "second one", "text with <angle> & ampersand"}

	require.NoError(t, WriteDocx(in, path))

	out, err := ReadDocxParagraphs(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadDocxParagraphsRejectsNonArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, err := ReadDocxParagraphs(path)
	require.Error(t, err)
}

func TestReadDocxParagraphsRejectsTruncatedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.docx")

	// document.xml cut off mid-element, as a partial download would leave it
	truncated := docxDocumentHeader +
		`<w:p><w:r><w:t>first</w:t></w:r></w:p><w:p><w:r><w:t>sec`
	writeDocxArchive(t, path, truncated)

	paragraphs, err := ReadDocxParagraphs(path)
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeConversion, utils.GetErrorType(err))
	assert.Nil(t, paragraphs)
}

func writeDocxArchive(t *testing.T, path, documentXML string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, part := range []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", documentXML},
	} {
		w, err := zw.Create(part.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(part.data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestSynthesizeDocxSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	s := NewSynthesizer()

	got, err := s.Synthesize("line one\n\n   \nline two", path, "docx")
	require.NoError(t, err)
	assert.Equal(t, path, got)

	paragraphs, err := ReadDocxParagraphs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"line one", "line two"}, paragraphs)
}

func TestSynthesizeTxtIsVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	s := NewSynthesizer()

	text := "keep\n\nblank lines\n"
	_, err := s.Synthesize(text, path, "txt")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, text, string(data))
}

func TestSynthesizePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	s := NewSynthesizer()

	_, err := s.Synthesize("pdf body text", path, "pdf")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSynthesizeUnsupportedFormat(t *testing.T) {
	s := NewSynthesizer()

	_, err := s.Synthesize("text", filepath.Join(t.TempDir(), "out.epub"), "epub")
	require.Error(t, err)
	assert.Equal(t, utils.ErrorTypeUnsupported, utils.GetErrorType(err))
	assert.Contains(t, err.Error(), "Supported formats: docx, txt, pdf")
}

func TestWriteTextPDFLongDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.pdf")

	var text string
	for i := 0; i < 200; i++ {
		text += "a fairly long line of body text that will need wrapping and paging\n"
	}
	require.NoError(t, WriteTextPDF(text, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestNonBlankLines(t *testing.T) {
	lines := NonBlankLines("a\r\n\r\n  \nb\nc")
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}
