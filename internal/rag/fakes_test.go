package rag

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"agentic-rag/internal/config"
	"agentic-rag/internal/crew"
	"agentic-rag/internal/index"
	"agentic-rag/internal/search"
)

type fakeDoc struct {
	mu      sync.Mutex
	name    string
	queries []string
	closed  int
}

func (d *fakeDoc) Query(ctx context.Context, text string) ([]index.Passage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, text)
	return []index.Passage{
		{Page: 2, Text: "Go is a statically typed language.", Score: 0.91},
		{Page: 5, Text: "Goroutines are cheap.", Score: 0.74},
	}, nil
}

func (d *fakeDoc) Info() index.Info {
	return index.Info{FileName: d.name, Pages: 7, Chunks: 12}
}

func (d *fakeDoc) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}

// fakeIndexer records what it was asked to index and whether the file was
// there at the time
type fakeIndexer struct {
	calls   int
	paths   []string
	existed []bool
	err     error
	doc     *fakeDoc
}

func (f *fakeIndexer) Index(ctx context.Context, path string) (Document, error) {
	f.calls++
	f.paths = append(f.paths, path)
	_, statErr := os.Stat(path)
	f.existed = append(f.existed, statErr == nil)
	if f.err != nil {
		return nil, f.err
	}
	if f.doc != nil {
		return f.doc, nil
	}
	return &fakeDoc{name: "report.pdf"}, nil
}

type stubPipeline struct {
	raw     string
	err     error
	queries []string
	block   chan struct{}
}

func (p *stubPipeline) Kickoff(ctx context.Context, inputs map[string]string) (*crew.Output, error) {
	if p.block != nil {
		<-p.block
	}
	p.queries = append(p.queries, inputs["query"])
	if p.err != nil {
		return nil, p.err
	}
	return &crew.Output{Raw: p.raw}, nil
}

type countingBuilder struct {
	calls    int
	docs     []Document
	pipeline Pipeline
	err      error
}

func (b *countingBuilder) Build(doc Document) (Pipeline, error) {
	b.calls++
	b.docs = append(b.docs, doc)
	if b.err != nil {
		return nil, b.err
	}
	return b.pipeline, nil
}

type stubSearcher struct {
	results []search.Result
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	s.queries = append(s.queries, query)
	return s.results, nil
}

type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
}

func (l *scriptedLLM) Chat(ctx context.Context, messages []crew.Message) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}
	r := l.replies[0]
	l.replies = l.replies[1:]
	return r, nil
}

func loadDescriptors(t testing.TB) (map[string]crew.AgentConfig, map[string]crew.TaskConfig) {
	t.Helper()
	agents, err := crew.LoadAgents("../../config/agents.yaml")
	require.NoError(t, err)
	tasks, err := crew.LoadTasks("../../config/tasks.yaml")
	require.NoError(t, err)
	return agents, tasks
}

// testBuilder returns a real pipeline builder with the environment and search
// provider replaced. apiKey is what the credential variable holds.
func testBuilder(t testing.TB, apiKey string, llm crew.LLM, searcher search.Searcher) (*PipelineBuilder, *builderCalls) {
	t.Helper()
	agents, tasks := loadDescriptors(t)
	calls := &builderCalls{}

	b := NewPipelineBuilder(config.DefaultConfig(), agents, tasks, llm).
		WithGetenv(func(key string) string {
			calls.envLookups = append(calls.envLookups, key)
			return apiKey
		}).
		WithSearcherFactory(func(cfg config.SearchConfig, key string) (search.Searcher, error) {
			calls.searchers++
			return searcher, nil
		})

	newAgent := b.newAgent
	b.newAgent = func(cfg crew.AgentConfig, llm crew.LLM, tools ...crew.Tool) *crew.Agent {
		calls.agents++
		return newAgent(cfg, llm, tools...)
	}
	return b, calls
}

type builderCalls struct {
	envLookups []string
	searchers  int
	agents     int
}
