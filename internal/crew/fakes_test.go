package crew

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// scriptedLLM replies with canned responses in order and records every prompt
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	calls   [][]Message
	err     error
}

func (s *scriptedLLM) Chat(ctx context.Context, messages []Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, append([]Message(nil), messages...))
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

type echoTool struct {
	name  string
	runs  []string
	fail  error
	reply string
}

func (e *echoTool) Name() string        { return e.name }
func (e *echoTool) Description() string { return "echoes the query" }
func (e *echoTool) Schema() []byte {
	return []byte(`{"type":"object","properties":{"query":{"type":"string","minLength":1}},"required":["query"]}`)
}

func (e *echoTool) Run(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", err
	}
	e.runs = append(e.runs, in.Query)
	if e.fail != nil {
		return "", e.fail
	}
	if e.reply != "" {
		return e.reply, nil
	}
	return "result for " + in.Query, nil
}
