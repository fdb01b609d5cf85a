package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agentic-rag/internal/index"
	"agentic-rag/internal/search"
)

const (
	DocumentSearchToolName = "document_search"
	WebSearchToolName      = "web_search"
)

var queryArgsSchema = []byte(`{
  "type": "object",
  "properties": {
    "query": {"type": "string", "minLength": 1, "description": "what to look for"}
  },
  "required": ["query"],
  "additionalProperties": false
}`)

type queryArgs struct {
	Query string `json:"query"`
}

func parseQueryArgs(args json.RawMessage) (string, error) {
	var in queryArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	q := strings.TrimSpace(in.Query)
	if q == "" {
		return "", fmt.Errorf("query must not be empty")
	}
	return q, nil
}

// Document is a searchable handle over one uploaded PDF
type Document interface {
	Query(ctx context.Context, text string) ([]index.Passage, error)
	Info() index.Info
	Close() error
}

// DocumentSearchTool lets an agent query the uploaded PDF
type DocumentSearchTool struct {
	doc    Document
	budget int
}

func NewDocumentSearchTool(doc Document, budget int) *DocumentSearchTool {
	return &DocumentSearchTool{doc: doc, budget: budget}
}

func (t *DocumentSearchTool) Name() string {
	return DocumentSearchToolName
}

func (t *DocumentSearchTool) Description() string {
	return fmt.Sprintf("Semantic search over the uploaded PDF %q. Returns the most relevant passages with page numbers.", t.doc.Info().FileName)
}

func (t *DocumentSearchTool) Schema() []byte {
	return queryArgsSchema
}

func (t *DocumentSearchTool) Run(ctx context.Context, args json.RawMessage) (string, error) {
	q, err := parseQueryArgs(args)
	if err != nil {
		return "", err
	}

	passages, err := t.doc.Query(ctx, q)
	if err != nil {
		return "", err
	}
	if len(passages) == 0 {
		return "No relevant passages found in the document.", nil
	}

	var sb strings.Builder
	for i, p := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] page %d (score %.2f)\n%s", i+1, p.Page, p.Score, p.Text)
	}
	return TruncateToTokenLimit(sb.String(), t.budget), nil
}

// WebSearchTool lets an agent search the web
type WebSearchTool struct {
	searcher search.Searcher
	budget   int
}

func NewWebSearchTool(searcher search.Searcher, budget int) *WebSearchTool {
	return &WebSearchTool{searcher: searcher, budget: budget}
}

func (t *WebSearchTool) Name() string {
	return WebSearchToolName
}

func (t *WebSearchTool) Description() string {
	return "Searches the web. Returns result titles, URLs and short summaries."
}

func (t *WebSearchTool) Schema() []byte {
	return queryArgsSchema
}

func (t *WebSearchTool) Run(ctx context.Context, args json.RawMessage) (string, error) {
	q, err := parseQueryArgs(args)
	if err != nil {
		return "", err
	}

	results, err := t.searcher.Search(ctx, q)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "No web results found.", nil
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] %s\n%s\n%s", i+1, strings.TrimSpace(r.Title), r.URL, strings.TrimSpace(r.Snippet))
	}
	return TruncateToTokenLimit(sb.String(), t.budget), nil
}
