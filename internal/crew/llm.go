package crew

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// LLM is the only thing an agent needs from a model: prompt in, text out.
type LLM interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
