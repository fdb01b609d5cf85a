package rag

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentic-rag/internal/crew"
	"agentic-rag/internal/search"
)

func TestDocumentSearchTool(t *testing.T) {
	doc := &fakeDoc{name: "go.pdf"}
	tool := NewDocumentSearchTool(doc, 0)

	assert.Contains(t, tool.Description(), `"go.pdf"`)
	require.NoError(t, crew.ValidateArgs(tool.Schema(), json.RawMessage(`{"query":"types"}`)))

	out, err := tool.Run(context.Background(), json.RawMessage(`{"query":"  types "}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"types"}, doc.queries)
	assert.Equal(t, "[1] page 2 (score 0.91)\nGo is a statically typed language.\n\n[2] page 5 (score 0.74)\nGoroutines are cheap.", out)
}

func TestWebSearchTool(t *testing.T) {
	s := &stubSearcher{results: []search.Result{
		{Title: "Go", URL: "https://go.dev", Snippet: "Build simple, secure, scalable systems"},
	}}
	tool := NewWebSearchTool(s, 0)

	out, err := tool.Run(context.Background(), json.RawMessage(`{"query":"golang"}`))
	require.NoError(t, err)
	assert.Equal(t, "[1] Go\nhttps://go.dev\nBuild simple, secure, scalable systems", out)

	s.results = nil
	out, err = tool.Run(context.Background(), json.RawMessage(`{"query":"nothing"}`))
	require.NoError(t, err)
	assert.Equal(t, "No web results found.", out)
}

func TestToolArgumentSchema(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		wantErr bool
	}{
		{name: "valid", args: `{"query":"x"}`},
		{name: "empty query", args: `{"query":""}`, wantErr: true},
		{name: "missing query", args: `{}`, wantErr: true},
		{name: "extra field", args: `{"query":"x","limit":3}`, wantErr: true},
		{name: "wrong type", args: `{"query":3}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := crew.ValidateArgs(queryArgsSchema, json.RawMessage(tt.args))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToolOutputIsBudgeted(t *testing.T) {
	long := strings.Repeat("word ", 200)
	s := &stubSearcher{results: []search.Result{{Title: "T", URL: "https://x.io", Snippet: long}}}

	out, err := NewWebSearchTool(s, 10).Run(context.Background(), json.RawMessage(`{"query":"q"}`))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), 10*CharsPerToken)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestTruncateToTokenLimit(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{name: "no limit", text: "abcdef", limit: 0, want: "abcdef"},
		{name: "fits", text: "abcdef", limit: 2, want: "abcdef"},
		{name: "cut", text: "abcdefghij", limit: 2, want: "abcde..."},
		{name: "keeps runes whole", text: "ééééé", limit: 2, want: "éé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateToTokenLimit(tt.text, tt.limit))
		})
	}
}

func TestObservationBudget(t *testing.T) {
	assert.Equal(t, 0, ObservationBudget(0))
	assert.Equal(t, 256, ObservationBudget(100))
	assert.Equal(t, 1024, ObservationBudget(2048))
}
