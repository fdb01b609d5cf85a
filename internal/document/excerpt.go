package document

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Excerpter trims retrieved chunks down to the sentences that overlap most
// with the query, keeping their original order. It is safe for concurrent use.
type Excerpter struct{}

func NewExcerpter() *Excerpter {
	return &Excerpter{}
}

type scoredSentence struct {
	text     string
	score    float64
	position int
}

// Excerpt returns text unchanged when it fits in limit bytes. Otherwise it
// keeps the best scoring sentences and marks the gaps with "...".
func (e *Excerpter) Excerpt(text, query string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}

	sentences := splitSentences(text)
	if len(sentences) <= 1 {
		return truncateAtBoundary(text, limit)
	}

	queryTerms := e.terms(query)
	scored := make([]scoredSentence, len(sentences))
	for i, s := range sentences {
		scored[i] = scoredSentence{
			text:     s,
			score:    overlap(queryTerms, e.terms(s)),
			position: i,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var picked []scoredSentence
	length := 0
	for _, s := range scored {
		if length+len(s.text)+1 > limit {
			if length == 0 {
				return truncateAtBoundary(s.text, limit)
			}
			continue
		}
		picked = append(picked, s)
		length += len(s.text) + 1
	}

	sort.Slice(picked, func(i, j int) bool {
		return picked[i].position < picked[j].position
	})

	var b strings.Builder
	for i, s := range picked {
		if i > 0 {
			if s.position != picked[i-1].position+1 {
				b.WriteString(" ... ")
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(s.text)
	}

	out := b.String()
	if picked[0].position > 0 {
		out = "..." + out
	}
	if picked[len(picked)-1].position < len(sentences)-1 {
		out += "..."
	}
	return out
}

// terms returns the case-folded non stop words of at least three letters
func (e *Excerpter) terms(text string) map[string]struct{} {
	// a Caser is stateful, so one per call
	words := strings.FieldsFunc(cases.Fold().String(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len([]rune(w)) < 3 || isStopWord(w) {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(query, sentence map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for term := range query {
		if _, ok := sentence[term]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		case '\n':
			if i+1 < len(text) && text[i+1] == '\n' {
				if s := strings.TrimSpace(text[start:i]); s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
