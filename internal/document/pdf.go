package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"agentic-rag/internal/logging"
)

// ExtractPDF reads the text layer of the PDF at path, one entry per page.
// Pages without text are skipped. A document with no text at all is ErrNoText.
func ExtractPDF(path string) (*Document, error) {
	if !IsPDF(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotPDF)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	if !bytes.Contains(raw[:min(len(raw), 1024)], []byte("%PDF-")) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotPDF)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	doc := &Document{
		FileName: filepath.Base(path),
		Path:     path,
		Hash:     FileHash(raw),
		Size:     int64(len(raw)),
	}

	cleaner := NewCleaner()
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		text, err := pageText(r, i)
		if err != nil {
			logging.Warn("pdf %s: skipping page %d: %v", doc.FileName, i, err)
			continue
		}

		text = cleaner.CleanText(text)
		if text == "" || MostlyWhitespace(text) {
			continue
		}
		doc.Pages = append(doc.Pages, Page{Number: i, Text: text})
	}

	logging.Debug("pdf %s: %d/%d pages with text", doc.FileName, len(doc.Pages), total)

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%s: %w", doc.FileName, ErrNoText)
	}

	return doc, nil
}

// pageText guards against panics inside the PDF parser on malformed content
// streams.
func pageText(r *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed page: %v", rec)
		}
	}()

	page := r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}

	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		font := page.Font(name)
		fonts[name] = &font
	}

	return page.GetPlainText(fonts)
}
