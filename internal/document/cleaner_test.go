package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ligatures", "ﬁnancial ﬂow", "financial flow"},
		{"full width", "ＡＢＣ１２３", "ABC123"},
		{"hyphenated line break", "conﬁgu-\nration", "configuration"},
		{"keeps real hyphen", "state-\nOwned", "state-\nOwned"},
		{"zero width", "a\u200bb\ufeffc\u00adc", "abcc"},
		{"whitespace", "  one \t two\r\n\n\n\nthree  ", "one two\n\nthree"},
	}

	c := NewCleaner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.CleanText(tt.in))
		})
	}
}

func TestMostlyWhitespace(t *testing.T) {
	assert.True(t, MostlyWhitespace(""))
	assert.True(t, MostlyWhitespace("a                    \n\n\n"))
	assert.False(t, MostlyWhitespace("plenty of text"))
}

func TestDocumentSnippet(t *testing.T) {
	doc := &Document{Pages: []Page{{Number: 1, Text: "The quick brown fox jumps over the lazy dog"}}}
	assert.Equal(t, "The quick brown...", doc.Snippet(18))
	assert.Equal(t, "The quick brown fox jumps over the lazy dog", doc.Snippet(100))
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("a.pdf"))
	assert.True(t, IsPDF("/x/y/B.PDF"))
	assert.False(t, IsPDF("a.pdf.txt"))
	assert.False(t, IsPDF("pdf"))
	assert.False(t, IsPDF("dir.pdf/file"))
}

func TestExtractPDFRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()

	_, err := ExtractPDF(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrNotPDF)

	fake := filepath.Join(dir, "fake.pdf")
	require.NoError(t, os.WriteFile(fake, []byte("just text pretending"), 0644))
	_, err = ExtractPDF(fake)
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = ExtractPDF(filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
