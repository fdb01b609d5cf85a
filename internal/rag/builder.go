package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"agentic-rag/internal/config"
	"agentic-rag/internal/crew"
	"agentic-rag/internal/logging"
	"agentic-rag/internal/search"
)

// Names of the descriptors the pipeline is assembled from
const (
	RetrieverAgent   = "retriever_agent"
	SynthesizerAgent = "response_synthesizer_agent"
	RetrievalTask    = "retrieval_task"
	ResponseTask     = "response_task"
)

// Pipeline answers one query
type Pipeline interface {
	Kickoff(ctx context.Context, inputs map[string]string) (*crew.Output, error)
}

// Builder constructs a session's pipeline. doc is nil when no PDF has been
// indexed.
type Builder interface {
	Build(doc Document) (Pipeline, error)
}

// SearcherFactory creates the web searcher from its config and credential
type SearcherFactory func(cfg config.SearchConfig, apiKey string) (search.Searcher, error)

// PipelineBuilder assembles the retriever and synthesizer crew
type PipelineBuilder struct {
	agents  map[string]crew.AgentConfig
	tasks   map[string]crew.TaskConfig
	llm     crew.LLM
	search  config.SearchConfig
	crewCfg config.CrewConfig
	budget  int

	getenv      func(string) string
	newSearcher SearcherFactory
	newAgent    func(cfg crew.AgentConfig, llm crew.LLM, tools ...crew.Tool) *crew.Agent
}

func NewPipelineBuilder(cfg *config.Config, agents map[string]crew.AgentConfig, tasks map[string]crew.TaskConfig, llm crew.LLM) *PipelineBuilder {
	return &PipelineBuilder{
		agents:      agents,
		tasks:       tasks,
		llm:         llm,
		search:      cfg.Search,
		crewCfg:     cfg.Crew,
		budget:      ObservationBudget(cfg.Model.MaxTokens),
		getenv:      os.Getenv,
		newSearcher: search.New,
		newAgent:    crew.NewAgent,
	}
}

// WithSearcherFactory replaces how the web searcher is created
func (b *PipelineBuilder) WithSearcherFactory(fn SearcherFactory) *PipelineBuilder {
	b.newSearcher = fn
	return b
}

// WithGetenv replaces the environment lookup used for the search credential
func (b *PipelineBuilder) WithGetenv(fn func(string) string) *PipelineBuilder {
	b.getenv = fn
	return b
}

// Build checks the search credential first, so a missing key fails before any
// agent or tool exists.
func (b *PipelineBuilder) Build(doc Document) (Pipeline, error) {
	apiKey := strings.TrimSpace(b.getenv(b.search.APIKeyEnv))
	if apiKey == "" && search.RequiresKey(b.search.Provider) {
		return nil, &ConfigError{
			Op:  "web search",
			Err: fmt.Errorf("%w: set %s in the environment or .env file", ErrMissingCredential, b.search.APIKeyEnv),
		}
	}

	retrieverCfg, ok := b.agents[RetrieverAgent]
	if !ok {
		return nil, &ConfigError{Op: "agents", Err: fmt.Errorf("agent %q is not defined", RetrieverAgent)}
	}
	synthesizerCfg, ok := b.agents[SynthesizerAgent]
	if !ok {
		return nil, &ConfigError{Op: "agents", Err: fmt.Errorf("agent %q is not defined", SynthesizerAgent)}
	}
	retrievalCfg, ok := b.tasks[RetrievalTask]
	if !ok {
		return nil, &ConfigError{Op: "tasks", Err: fmt.Errorf("task %q is not defined", RetrievalTask)}
	}
	responseCfg, ok := b.tasks[ResponseTask]
	if !ok {
		return nil, &ConfigError{Op: "tasks", Err: fmt.Errorf("task %q is not defined", ResponseTask)}
	}
	if err := checkAssignment(RetrievalTask, retrievalCfg, RetrieverAgent); err != nil {
		return nil, err
	}
	if err := checkAssignment(ResponseTask, responseCfg, SynthesizerAgent); err != nil {
		return nil, err
	}

	searcher, err := b.newSearcher(b.search, apiKey)
	if err != nil {
		if errors.Is(err, search.ErrMissingAPIKey) {
			err = fmt.Errorf("%w: %v", ErrMissingCredential, err)
		}
		return nil, &ConfigError{Op: "web search", Err: err}
	}

	var tools []crew.Tool
	if doc != nil {
		tools = append(tools, NewDocumentSearchTool(doc, b.budget))
	}
	tools = append(tools, NewWebSearchTool(searcher, b.budget))

	retriever := b.configure(b.newAgent(retrieverCfg, b.llm, tools...))
	synthesizer := b.configure(b.newAgent(synthesizerCfg, b.llm))

	c, err := crew.New(
		[]*crew.Agent{retriever, synthesizer},
		[]*crew.Task{
			crew.NewTask(RetrievalTask, retrievalCfg, retriever),
			crew.NewTask(ResponseTask, responseCfg, synthesizer),
		},
		crew.Sequential,
	)
	if err != nil {
		return nil, &ConfigError{Op: "crew", Err: err}
	}

	logging.Info("pipeline built: %s with %d tool(s), provider %s", RetrieverAgent, len(tools), b.search.Provider)
	return c, nil
}

// checkAssignment rejects a task whose descriptor names a different agent
// than the one it runs on. An empty agent field is accepted.
func checkAssignment(task string, cfg crew.TaskConfig, agent string) error {
	if cfg.Agent != "" && cfg.Agent != agent {
		return &ConfigError{Op: "tasks", Err: fmt.Errorf("task %q names agent %q but runs on %q", task, cfg.Agent, agent)}
	}
	return nil
}

func (b *PipelineBuilder) configure(a *crew.Agent) *crew.Agent {
	if b.crewCfg.MaxIterations > 0 {
		a.MaxIterations = b.crewCfg.MaxIterations
	}
	a.Verbose = b.crewCfg.Verbose
	return a
}
