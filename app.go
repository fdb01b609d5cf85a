package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"agentic-rag/internal/config"
	"agentic-rag/internal/crew"
	"agentic-rag/internal/index"
	"agentic-rag/internal/logging"
	"agentic-rag/internal/models"
	"agentic-rag/internal/ollama"
	"agentic-rag/internal/rag"
	"agentic-rag/internal/server"
	"agentic-rag/internal/session"
	"agentic-rag/internal/vector"
)

const shutdownTimeout = 10 * time.Second

// app holds the long-lived dependencies shared by both commands
type app struct {
	cfg *config.Config
	// cfgPath is where a model picked in the TUI is saved. Empty means the per-user file.
	cfgPath string
	client  *ollama.Client
	store   *vector.BadgerStore
	agents  map[string]crew.AgentConfig
	tasks   map[string]crew.TaskConfig
}

func newApp(cfg *config.Config, cfgPath string) (*app, error) {
	agents, err := crew.LoadAgents(cfg.Crew.AgentsFile)
	if err != nil {
		return nil, &rag.ConfigError{Op: "load agents", Err: err}
	}
	tasks, err := crew.LoadTasks(cfg.Crew.TasksFile)
	if err != nil {
		return nil, &rag.ConfigError{Op: "load tasks", Err: err}
	}

	// chunks only live as long as the process
	store, err := vector.NewBadgerStore("")
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		cfgPath: cfgPath,
		client:  ollama.NewClient(cfg.Model.BaseURL, cfg.ModelTimeout()),
		store:   store,
		agents:  agents,
		tasks:   tasks,
	}, nil
}

// orchestrator wires indexing and the agent pipeline around the named chat model
func (a *app) orchestrator(model string) *rag.Orchestrator {
	llm := ollama.NewChat(a.client, model, a.cfg.Model.Temperature, a.cfg.Model.MaxTokens)
	embedder := ollama.NewEmbedder(a.client, a.cfg.Model.EmbedModel)

	indexer := index.NewBuilder(a.store, embedder, index.Options{
		ChunkSize:      a.cfg.Index.ChunkSize,
		ChunkOverlap:   a.cfg.Index.ChunkOverlap,
		TopK:           a.cfg.Index.TopK,
		EmbedBatchSize: a.cfg.Index.EmbedBatchSize,
		Workers:        a.cfg.Index.Workers,
		ExcerptLength:  a.cfg.Index.ExcerptLength,
	})
	pipelines := rag.NewPipelineBuilder(a.cfg, a.agents, a.tasks, llm)

	return rag.NewOrchestrator(rag.FromBuilder(indexer), pipelines).
		WithObserver(func(s *rag.Session, t models.Turn) {
			logging.Debug("session %s: %s turn (%d chars)", s.ID, t.Role, len(t.Content))
		})
}

// rememberModel makes name the chat model for later runs
func (a *app) rememberModel(name string) error {
	path := a.cfgPath
	if path == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	updated := *a.cfg
	updated.Model.Name = name
	if err := config.Save(path, &updated); err != nil {
		return err
	}

	a.cfg.Model.Name = name
	logging.Info("saved %s as the chat model in %s", name, path)
	return nil
}

func (a *app) Close() {
	a.client.Close()
	if err := a.store.Close(); err != nil {
		logging.Error("failed to close chunk store: %v", err)
	}
}

func runChat() error {
	cfg, err := loadSettings(false)
	if err != nil {
		return err
	}
	defer logging.Close()

	a, err := newApp(cfg, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	installed, err := a.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("cannot reach the model endpoint at %s (is ollama running?): %w", a.client.BaseURL(), err)
	}
	hasModel, err := a.client.HasModel(ctx, cfg.Model.Name)
	if err != nil {
		return err
	}
	if !hasModel && len(installed) == 0 {
		return fmt.Errorf("no models are pulled on %s; run `ollama pull %s` first", a.client.BaseURL(), cfg.Model.Name)
	}

	root := newRootModel(a, installed, hasModel)
	defer root.Close()

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func runServe() error {
	cfg, err := loadSettings(true)
	if err != nil {
		return err
	}
	defer logging.Close()

	a, err := newApp(cfg, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	sessions := session.NewStore(cfg.SessionTTL())
	defer sessions.Close()

	srv := server.New(cfg, a.orchestrator(cfg.Model.Name), sessions, a.client)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
