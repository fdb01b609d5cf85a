package document

import (
	"errors"
	"strings"
)

var (
	// ErrNoText is returned for PDFs without an extractable text layer, such as scans
	ErrNoText = errors.New("no extractable text in document")
	ErrNotPDF = errors.New("file is not a PDF")
)

// Page is the cleaned text of one PDF page. Number starts at 1.
type Page struct {
	Number int
	Text   string
}

// Document is an extracted PDF
type Document struct {
	FileName string
	Path     string
	Hash     string
	Size     int64
	Pages    []Page
}

// PageCount returns the number of pages that carried text
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Snippet returns up to limit bytes from the start of the document,
// cut at a word boundary
func (d *Document) Snippet(limit int) string {
	var sb strings.Builder
	for _, p := range d.Pages {
		if sb.Len() >= limit {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.Text)
	}
	return truncateAtBoundary(sb.String(), limit)
}

func truncateAtBoundary(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	truncated := text[:alignRune(text, limit)]
	if lastSpace := strings.LastIndexAny(truncated, " \n"); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}
	return strings.TrimSpace(truncated) + "..."
}

// IsPDF reports whether name has a .pdf extension
func IsPDF(name string) bool {
	return strings.EqualFold(extension(name), ".pdf")
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && !strings.ContainsAny(name[i:], `/\`) {
		return name[i:]
	}
	return ""
}
