package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Chunker splits page text into overlapping chunks for embedding. Chunks never
// span pages so every passage can be cited by page number.
type Chunker struct {
	ChunkSize    int
	ChunkOverlap int
}

// Chunk is a piece of one page. Index is unique within the document.
type Chunk struct {
	Index   int    `json:"index"`
	Page    int    `json:"page"`
	Content string `json:"content"`
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = 0
		}
	}
	return &Chunker{ChunkSize: size, ChunkOverlap: overlap}
}

func (c *Chunker) ChunkDocument(doc *Document) []Chunk {
	var chunks []Chunk
	for _, page := range doc.Pages {
		for _, text := range c.ChunkText(page.Text) {
			chunks = append(chunks, Chunk{
				Index:   len(chunks),
				Page:    page.Number,
				Content: text,
			})
		}
	}
	return chunks
}

// ChunkText splits text preferring paragraph, line, sentence and then word
// boundaries near the size limit
func (c *Chunker) ChunkText(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if len(content) <= c.ChunkSize {
		return []string{content}
	}

	var chunks []string
	position := 0

	for position < len(content) {
		endPos := position + c.ChunkSize
		if endPos >= len(content) {
			endPos = len(content)
		} else {
			endPos = c.findBreakPoint(content, position, alignRune(content, endPos))
		}

		if text := strings.TrimSpace(content[position:endPos]); text != "" && !MostlyWhitespace(text) {
			chunks = append(chunks, text)
		}

		if endPos == len(content) {
			break
		}

		next := c.overlapStart(content, position, endPos)
		if next <= position {
			next = endPos
		}
		position = next
	}

	return chunks
}

// overlapStart steps back ChunkOverlap bytes from end and then forward to the
// next word so the overlap never starts mid-word
func (c *Chunker) overlapStart(content string, start, end int) int {
	if c.ChunkOverlap == 0 {
		return end
	}
	pos := alignRune(content, end-c.ChunkOverlap)
	if pos <= start {
		return end
	}
	if i := strings.IndexFunc(content[pos:end], unicode.IsSpace); i >= 0 {
		pos += i + 1
	}
	return pos
}

func (c *Chunker) findBreakPoint(content string, start, targetEnd int) int {
	// look back at most a fifth of a chunk for a natural boundary
	searchStart := alignRune(content, targetEnd-c.ChunkSize/5)
	if searchStart < start {
		searchStart = start
	}
	window := content[searchStart:targetEnd]

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return searchStart + i + 2
	}
	if i := strings.LastIndex(window, "\n"); i >= 0 {
		return searchStart + i + 1
	}
	if i := lastSentenceEnd(window); i >= 0 {
		return searchStart + i
	}
	if i := strings.LastIndexFunc(window, unicode.IsSpace); i >= 0 {
		return searchStart + i + 1
	}

	return targetEnd
}

// lastSentenceEnd returns the offset just past the last '.', '!' or '?' that is
// followed by whitespace, or -1
func lastSentenceEnd(window string) int {
	for i := len(window) - 2; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?':
			if window[i+1] == ' ' || window[i+1] == '\n' {
				return i + 1
			}
		}
	}
	return -1
}

// alignRune moves pos back to the start of the rune containing it
func alignRune(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(s) {
		return len(s)
	}
	for pos > 0 && !utf8.RuneStart(s[pos]) {
		pos--
	}
	return pos
}
