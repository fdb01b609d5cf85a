package rag

import "strings"

// Replay splits a finished answer into cumulative frames, one more line per
// frame, for the typing effect. The last frame is the whole text.
func Replay(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	frames := make([]string, len(lines))
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		frames[i] = sb.String()
	}
	return frames
}
