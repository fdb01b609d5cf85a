package rag

import "unicode/utf8"

// CharsPerToken is a rough estimate; real values vary by tokenizer
const CharsPerToken = 4

// TruncateToTokenLimit cuts text to fit tokenLimit, ending with "..." when
// something was cut. A limit of zero or less leaves text alone.
func TruncateToTokenLimit(text string, tokenLimit int) string {
	if tokenLimit <= 0 {
		return text
	}
	maxChars := tokenLimit * CharsPerToken
	if len(text) <= maxChars {
		return text
	}
	if maxChars <= 3 {
		return "..."
	}

	cut := maxChars - 3
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

// ObservationBudget is the number of tokens a single tool result may use.
// Half the generation budget is left for the agent's own reasoning.
func ObservationBudget(maxTokens int) int {
	if maxTokens <= 0 {
		return 0
	}
	return max(maxTokens/2, 256)
}
