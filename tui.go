package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"agentic-rag/internal/logging"
	"agentic-rag/internal/ollama"
	"agentic-rag/internal/rag"
	"agentic-rag/internal/ui"
)

type appState int

const (
	stateModelSelect appState = iota
	stateChatView
)

type model struct {
	state   appState
	app     *app
	session *rag.Session

	// UI models
	modelSelectModel ui.ModelSelectModel
	chatViewModel    ui.ChatViewModel

	width  int
	height int
}

// newRootModel opens the chat straight away when the configured model is
// pulled, otherwise it asks the user to pick one first
func newRootModel(a *app, installed []ollama.Model, hasModel bool) *model {
	m := &model{
		app:     a,
		session: rag.NewSession(),
		width:   80,
		height:  24,
	}

	if hasModel {
		m.openChat(a.cfg.Model.Name)
		return m
	}

	m.state = stateModelSelect
	m.modelSelectModel = ui.NewModelSelectModel(installed, a.cfg.Model.Name, m.width, m.height)
	return m
}

func (m *model) openChat(modelName string) {
	m.state = stateChatView
	m.chatViewModel = ui.NewChatViewModel(m.app.orchestrator(modelName), m.session, ui.ChatOptions{
		ModelName:   modelName,
		Provider:    m.app.cfg.Search.Provider,
		ReplayDelay: m.app.cfg.ReplayDelay(),
	}, m.width, m.height)
}

// Close releases the session's document
func (m *model) Close() {
	m.chatViewModel.Close()
	m.session.Reset()
}

func (m *model) Init() tea.Cmd {
	switch m.state {
	case stateModelSelect:
		return m.modelSelectModel.Init()
	case stateChatView:
		return m.chatViewModel.Init()
	}
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case ui.ModelSelected:
		if err := m.app.rememberModel(msg.Name); err != nil {
			logging.Warn("could not save the selected model: %v", err)
		}
		m.openChat(msg.Name)
		return m, tea.Batch(m.chatViewModel.Init(), func() tea.Msg {
			return tea.WindowSizeMsg{Width: m.width, Height: m.height}
		})
	}

	switch m.state {
	case stateModelSelect:
		newModel, cmd := m.modelSelectModel.Update(msg)
		m.modelSelectModel = newModel.(ui.ModelSelectModel)
		return m, cmd

	case stateChatView:
		newModel, cmd := m.chatViewModel.Update(msg)
		m.chatViewModel = newModel.(ui.ChatViewModel)
		return m, cmd
	}

	return m, nil
}

func (m *model) View() string {
	switch m.state {
	case stateModelSelect:
		return m.modelSelectModel.View()
	case stateChatView:
		return m.chatViewModel.View()
	}

	return "Loading..."
}
