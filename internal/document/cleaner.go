package document

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Cleaner normalises text pulled out of PDFs before it is chunked
type Cleaner struct {
	spaces       *regexp.Regexp
	blankLines   *regexp.Regexp
	hyphenBreaks *regexp.Regexp
}

func NewCleaner() *Cleaner {
	return &Cleaner{
		spaces:       regexp.MustCompile(`[ \t\f\v\x{00A0}]+`),
		blankLines:   regexp.MustCompile(`\n{3,}`),
		hyphenBreaks: regexp.MustCompile(`(\p{L})-\n(\p{Ll})`),
	}
}

// CleanText applies NFKC normalisation (splits ligatures such as "ﬁ" and folds
// full-width forms), drops invisible characters, rejoins words hyphenated
// across line breaks and collapses whitespace.
func (c *Cleaner) CleanText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = removeInvisible(text)
	text = c.hyphenBreaks.ReplaceAllString(text, "$1$2")
	text = c.spaces.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, " \n", "\n")
	text = strings.ReplaceAll(text, "\n ", "\n")
	text = c.blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func removeInvisible(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch r {
		case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u00AD':
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\t' || r == ' ' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// MostlyWhitespace reports whether less than a tenth of text is visible
func MostlyWhitespace(text string) bool {
	if len(text) == 0 {
		return true
	}

	visible := 0
	total := 0
	for _, r := range text {
		total++
		if !unicode.IsSpace(r) {
			visible++
		}
	}
	return float64(visible)/float64(total) < 0.1
}

// FileHash is the hex SHA-256 of content
func FileHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
