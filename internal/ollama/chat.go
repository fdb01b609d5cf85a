package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"agentic-rag/internal/crew"
	"agentic-rag/internal/logging"
)

// Ollama serves an OpenAI compatible chat API under /v1
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message,omitempty"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// ChatCompletionSync returns the complete reply in one response
func (c *Client) ChatCompletionSync(ctx context.Context, req ChatCompletionRequest) (string, error) {
	req.Stream = false

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/chat/completions", req)
	if err != nil {
		return "", fmt.Errorf("failed to make chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat completion API returned status %d: %s", resp.StatusCode, string(body))
	}

	var completionResp ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completionResp); err != nil {
		return "", fmt.Errorf("failed to decode chat completion response: %w", err)
	}

	if len(completionResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned in chat completion response")
	}

	logging.Debug("chat completion: model=%s prompt_tokens=%d completion_tokens=%d",
		completionResp.Model, completionResp.Usage.PromptTokens, completionResp.Usage.CompletionTokens)

	return completionResp.Choices[0].Message.Content, nil
}

// Chat binds a client to one model and its sampling options so agents can use
// it without knowing about the wire format.
type Chat struct {
	client      *Client
	model       string
	temperature float64
	maxTokens   int
}

var _ crew.LLM = (*Chat)(nil)

func NewChat(client *Client, model string, temperature float64, maxTokens int) *Chat {
	if model == "" {
		model = DefaultModel
	}
	return &Chat{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (c *Chat) Model() string {
	return c.model
}

func (c *Chat) Chat(ctx context.Context, messages []crew.Message) (string, error) {
	req := ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]ChatMessage, len(messages)),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	for i, m := range messages {
		req.Messages[i] = ChatMessage{Role: m.Role, Content: m.Content}
	}

	return c.client.ChatCompletionSync(ctx, req)
}
