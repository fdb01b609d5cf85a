package crew

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

const (
	finalAnswerMarker = "Final Answer:"
	observationMarker = "Observation:"
)

var (
	// markers only count at the start of a line, so "transaction:" is prose
	actionPattern      = regexp.MustCompile(`(?im)^[ \t]*Action[ \t]*:[ \t]*([^\n]+)`)
	actionInputPattern = regexp.MustCompile(`(?ims)^[ \t]*Action[ \t]*Input[ \t]*:\s*(.*)`)
	trailingComma      = regexp.MustCompile(`,\s*([}\]])`)
)

var errNoActionInput = errors.New("action input must be a JSON object")

// step is one parsed model reply inside the tool-use loop
type step struct {
	Action string
	Input  json.RawMessage
	// InputErr is set when an action was named but its input could not be read
	InputErr error
	Final    string
	IsFinal  bool
}

// parseStep reads a reply in the Action / Action Input / Final Answer format.
// A reply with neither marker is taken as a final answer.
func parseStep(reply string) step {
	reply = strings.TrimSpace(truncateAtObservation(reply))

	finalIdx := strings.Index(reply, finalAnswerMarker)
	loc := actionPattern.FindStringSubmatchIndex(reply)

	if loc != nil && (finalIdx < 0 || loc[0] < finalIdx) {
		name := strings.Trim(strings.TrimSpace(reply[loc[2]:loc[3]]), "`\"'")
		s := step{Action: name}
		s.Input, s.InputErr = extractInput(reply[loc[0]:])
		return s
	}

	if finalIdx >= 0 {
		return step{IsFinal: true, Final: strings.TrimSpace(reply[finalIdx+len(finalAnswerMarker):])}
	}

	return step{IsFinal: true, Final: reply}
}

// truncateAtObservation drops anything the model invented after its own
// action, since observations only come from real tool runs.
func truncateAtObservation(reply string) string {
	if idx := strings.Index(reply, "\n"+observationMarker); idx >= 0 {
		return reply[:idx]
	}
	return reply
}

func extractInput(text string) (json.RawMessage, error) {
	m := actionInputPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, errNoActionInput
	}

	rest := strings.TrimSpace(m[1])
	rest = strings.TrimPrefix(rest, "```json")
	rest = strings.TrimPrefix(rest, "```")

	start := strings.Index(rest, "{")
	if start < 0 {
		return nil, errNoActionInput
	}

	var raw json.RawMessage
	dec := json.NewDecoder(strings.NewReader(rest[start:]))
	if err := dec.Decode(&raw); err == nil {
		return raw, nil
	}

	// small models often emit trailing commas or single quotes
	end := strings.LastIndex(rest, "}")
	if end < start {
		return nil, errNoActionInput
	}
	fixed := trailingComma.ReplaceAllString(rest[start:end+1], "$1")
	fixed = strings.ReplaceAll(fixed, "'", "\"")
	if json.Valid([]byte(fixed)) {
		return json.RawMessage(fixed), nil
	}

	return nil, errNoActionInput
}
