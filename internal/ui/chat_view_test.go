package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentic-rag/internal/crew"
	"agentic-rag/internal/index"
	"agentic-rag/internal/models"
	"agentic-rag/internal/rag"
)

type stubDoc struct {
	info index.Info
}

func (d stubDoc) Query(ctx context.Context, text string) ([]index.Passage, error) {
	return nil, nil
}
func (d stubDoc) Info() index.Info { return d.info }
func (d stubDoc) Close() error     { return nil }

type stubPipeline struct {
	answer string
	err    error
}

func (p stubPipeline) Kickoff(ctx context.Context, inputs map[string]string) (*crew.Output, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &crew.Output{Raw: p.answer}, nil
}

type stubBuilder struct {
	pipeline rag.Pipeline
	err      error
}

func (b stubBuilder) Build(doc rag.Document) (rag.Pipeline, error) {
	return b.pipeline, b.err
}

func newTestView(t *testing.T, builder rag.Builder) (ChatViewModel, *rag.Session) {
	t.Helper()

	indexer := rag.IndexerFunc(func(ctx context.Context, path string) (rag.Document, error) {
		return stubDoc{info: index.Info{FileName: filepath.Base(path), Pages: 3, Chunks: 7, Size: 2048, Snippet: "Quarterly revenue grew."}}, nil
	})
	s := rag.NewSession()
	m := NewChatViewModel(rag.NewOrchestrator(indexer, builder), s, ChatOptions{
		ModelName:   "llama3.2",
		Provider:    "firecrawl",
		ReplayDelay: time.Millisecond,
	}, 120, 40)
	t.Cleanup(m.Close)
	return m, s
}

func typeAndSend(t *testing.T, m ChatViewModel, text string) (ChatViewModel, tea.Cmd) {
	t.Helper()
	m.textarea.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(ChatViewModel), cmd
}

func step(t *testing.T, m ChatViewModel, msg tea.Msg) (ChatViewModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(ChatViewModel), cmd
}

func TestChatTurnReplaysAnswer(t *testing.T) {
	m, s := newTestView(t, stubBuilder{pipeline: stubPipeline{answer: "line one\nline two\nline three"}})

	m, cmd := typeAndSend(t, m, "what changed?")
	require.NotNil(t, cmd)
	assert.Equal(t, StateThinking, m.processingState)
	assert.Empty(t, m.textarea.Value())

	m, cmd = step(t, m, cmd())
	require.NotNil(t, cmd)
	assert.Equal(t, StateReplaying, m.processingState)
	assert.Len(t, m.frames, 3)

	for m.processingState == StateReplaying {
		m, _ = step(t, m, ReplayTickMsg{})
	}

	assert.Equal(t, StateIdle, m.processingState)
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "line one\nline two\nline three", history[1].Content)
	assert.Contains(t, m.viewport.View(), "three")
}

func TestPathInPromptIndexesThenAsks(t *testing.T) {
	pdf := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0644))

	m, s := newTestView(t, stubBuilder{pipeline: stubPipeline{answer: "Revenue grew."}})

	m, cmd := typeAndSend(t, m, pdf+" how did revenue change?")
	require.NotNil(t, cmd)
	assert.Equal(t, StateIndexing, m.processingState)

	msg := cmd()
	done, ok := msg.(IndexingComplete)
	require.True(t, ok)
	require.NoError(t, done.Err)
	assert.True(t, done.Indexed)
	assert.Equal(t, "how did revenue change?", done.PendingQuery)

	m, cmd = step(t, m, msg)
	assert.Equal(t, "PDF indexed! Ready to chat.", m.notice)
	require.NotNil(t, cmd)
	assert.Equal(t, StateThinking, m.processingState)

	m, _ = step(t, m, cmd())
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "how did revenue change?", history[0].Content)
	assert.Contains(t, m.renderSidebar(), "report.pdf")
	assert.Contains(t, m.renderSidebar(), "3 pages")
}

func TestFatalErrorBlocksView(t *testing.T) {
	cfgErr := &rag.ConfigError{Op: "web search", Err: rag.ErrMissingCredential}
	m, _ := newTestView(t, stubBuilder{err: cfgErr})

	m, cmd := typeAndSend(t, m, "hello")
	m, _ = step(t, m, cmd())

	assert.Equal(t, StateIdle, m.processingState)
	assert.ErrorIs(t, m.fatal, rag.ErrMissingCredential)
	assert.Contains(t, m.View(), "Configuration error")
}

func TestPipelineErrorShowsInStatus(t *testing.T) {
	m, s := newTestView(t, stubBuilder{pipeline: stubPipeline{err: errors.New("model timed out")}})

	m, cmd := typeAndSend(t, m, "hello")
	m, _ = step(t, m, cmd())

	assert.Nil(t, m.fatal)
	require.Error(t, m.err)
	assert.Contains(t, m.statusLine(), "model timed out")
	assert.Len(t, s.History(), 1)
}

func TestClearChatResetsSession(t *testing.T) {
	m, s := newTestView(t, stubBuilder{pipeline: stubPipeline{answer: "ok"}})

	m, cmd := typeAndSend(t, m, "hello")
	m, _ = step(t, m, cmd())
	require.Len(t, s.History(), 2)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, s.History())
	assert.Equal(t, "Chat cleared", m.notice)
}

func TestEnterIgnoredWhileBusy(t *testing.T) {
	m, _ := newTestView(t, stubBuilder{pipeline: stubPipeline{answer: "ok"}})

	m, cmd := typeAndSend(t, m, "first")
	require.NotNil(t, cmd)

	_, second := typeAndSend(t, m, "second")
	assert.Nil(t, second)
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{name: "short text unchanged", text: "  hello  ", limit: 10, want: "hello"},
		{name: "long text cut", text: "abcdefghij", limit: 4, want: "abcd..."},
		{name: "multibyte safe", text: "ééééé", limit: 2, want: "éé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preview(tt.text, tt.limit))
		})
	}
}
