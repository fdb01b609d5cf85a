package document

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkDocumentKeepsPages(t *testing.T) {
	doc := &Document{Pages: []Page{
		{Number: 1, Text: "Short first page."},
		{Number: 3, Text: strings.Repeat("Second page sentence here. ", 30)},
	}}

	chunks := NewChunker(200, 20).ChunkDocument(doc)
	require.Greater(t, len(chunks), 2)

	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, "Short first page.", chunks[0].Content)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		if i > 0 {
			assert.Equal(t, 3, c.Page)
		}
		assert.LessOrEqual(t, len(c.Content), 200)
	}
}

func TestChunkTextPrefersParagraphs(t *testing.T) {
	para := strings.Repeat("word ", 30)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := NewChunker(170, 0).ChunkText(text)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Equal(t, strings.TrimSpace(para), c)
	}
}

func TestChunkTextOverlapStartsOnWord(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta. ", 40)
	chunks := NewChunker(120, 30).ChunkText(text)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks[1:] {
		first := strings.Fields(c)[0]
		assert.Contains(t, []string{"alpha", "beta", "gamma", "delta."}, first)
	}
}

func TestChunkTextIsUTF8Safe(t *testing.T) {
	text := strings.Repeat("日本語のテキスト", 200)
	chunks := NewChunker(100, 10).ChunkText(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
	}
}

func TestChunkTextEmpty(t *testing.T) {
	assert.Nil(t, NewChunker(100, 10).ChunkText("   \n "))
}

func TestNewChunkerFixesBadSettings(t *testing.T) {
	c := NewChunker(0, -1)
	assert.Equal(t, DefaultChunkSize, c.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, c.ChunkOverlap)

	c = NewChunker(50, 80)
	assert.Equal(t, 0, c.ChunkOverlap)
}
