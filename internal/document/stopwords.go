package document

var englishStopWords = toSet(
	"the", "be", "to", "of", "and", "in", "that", "have", "it", "for", "not",
	"on", "with", "he", "as", "you", "do", "at", "this", "but", "his", "by",
	"from", "they", "we", "say", "her", "she", "or", "an", "will", "my", "one",
	"all", "would", "there", "their", "what", "so", "up", "out", "if", "about",
	"who", "get", "which", "go", "me", "when", "make", "can", "like", "no",
	"just", "him", "know", "take", "into", "your", "some", "could", "them",
	"see", "other", "than", "then", "now", "only", "its", "over", "also",
	"after", "use", "how", "our", "even", "any", "these", "give", "most", "us",
	"is", "was", "are", "been", "has", "had", "were", "said", "did", "does",
	"doing", "why", "where", "whom", "whose", "tell", "explain", "describe",
	"document", "pdf", "please", "should", "may", "might", "must", "shall",
)

// isStopWord expects a case-folded word
func isStopWord(word string) bool {
	_, ok := englishStopWords[word]
	return ok
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
