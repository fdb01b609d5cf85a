package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"agentic-rag/internal/document"
	"agentic-rag/internal/index"
	"agentic-rag/internal/logging"
	"agentic-rag/internal/models"
	"agentic-rag/internal/rag"
)

const (
	titleHeight    = 3
	textareaHeight = 5
	helpHeight     = 2
	padding        = 2
	sidebarWidth   = 34
	previewLength  = 420
	replayCursor   = "▌"
)

type ProcessingState int

const (
	StateIdle ProcessingState = iota
	StateIndexing
	StateThinking
	StateReplaying
)

// ChatOptions carries display settings for the chat view
type ChatOptions struct {
	ModelName   string
	Provider    string
	ReplayDelay time.Duration
}

type ChatViewModel struct {
	orchestrator *rag.Orchestrator
	session      *rag.Session
	opts         ChatOptions

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	upload   UploadOverlayModel

	width           int
	height          int
	processingState ProcessingState
	renderedTurns   int
	frames          []string
	frame           int
	notice          string
	err             error
	fatal           error
	ctx             context.Context
	cancelFunc      context.CancelFunc
	mdRenderer      *glamour.TermRenderer
	thinkingStart   time.Time
	lastDuration    time.Duration
}

// IndexingComplete is sent when an upload finished. PendingQuery is a
// question typed together with the path, to be asked once indexing is done.
type IndexingComplete struct {
	Indexed      bool
	Info         index.Info
	Err          error
	PendingQuery string
}

// ChatResponseComplete carries the result of one chat turn
type ChatResponseComplete struct {
	Answer string
	Err    error
}

type ReplayTickMsg struct{}

// createMarkdownRenderer creates a markdown renderer with fallback handling
func createMarkdownRenderer(width int) *glamour.TermRenderer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-6, 20)),
	)
	if err == nil {
		return renderer
	}
	logging.Error("Failed to create markdown renderer with auto style: %v, trying fallback", err)

	renderer, err = glamour.NewTermRenderer(glamour.WithWordWrap(max(width-6, 20)))
	if err != nil {
		logging.Error("Failed to create markdown renderer: %v, using plain text", err)
		return nil
	}
	return renderer
}

// safeRenderMarkdown renders markdown, falling back to the raw text
func (m *ChatViewModel) safeRenderMarkdown(content string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Panic in markdown rendering: %v", r)
			out = content
		}
	}()

	if m.mdRenderer == nil || content == "" {
		return content
	}

	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		logging.Error("Markdown rendering error: %v, falling back to plain text", err)
		return content
	}
	return strings.Trim(rendered, "\n")
}

func NewChatViewModel(orchestrator *rag.Orchestrator, session *rag.Session, opts ChatOptions, width, height int) ChatViewModel {
	ta := textarea.New()
	ta.Placeholder = "Ask a question, or drop a PDF path to index it..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline = key.NewBinding()

	vp := viewport.New(0, 0)
	vp.MouseWheelDelta = 2
	vp.KeyMap.Down = key.NewBinding(key.WithKeys("down"))
	vp.KeyMap.Up = key.NewBinding(key.WithKeys("up"))
	vp.KeyMap.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	vp.KeyMap.PageUp = key.NewBinding(key.WithKeys("pgup"))
	vp.KeyMap.HalfPageDown = key.NewBinding()
	vp.KeyMap.HalfPageUp = key.NewBinding()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(context.Background())

	m := ChatViewModel{
		orchestrator: orchestrator,
		session:      session,
		opts:         opts,
		viewport:     vp,
		textarea:     ta,
		spinner:      sp,
		upload:       NewUploadOverlayModel(),
		ctx:          ctx,
		cancelFunc:   cancel,
	}
	m.resize(width, height)
	m.renderMessages()
	return m
}

func (m *ChatViewModel) resize(width, height int) {
	m.width = width
	m.height = height

	mainWidth := max(width-sidebarWidth-2, 20)
	m.viewport.Width = mainWidth - 4
	m.viewport.Height = max(height-titleHeight-textareaHeight-helpHeight-padding-2, 3)
	m.textarea.SetWidth(mainWidth - 2)
	m.upload.UpdateSize(width, height)
	m.mdRenderer = createMarkdownRenderer(m.viewport.Width)
}

func (m ChatViewModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Close stops any work started by the view
func (m ChatViewModel) Close() {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
}

func (m ChatViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case UploadRequested:
		m.upload.Hide()
		m.textarea.Focus()
		return m, m.startIndexing(msg.Path, "")

	case UploadCancelled:
		m.upload.Hide()
		m.textarea.Focus()
		return m, nil
	}

	if m.upload.IsVisible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, m.upload.UpdateUpload(msg)
		}
		if cmd := m.upload.UpdateUpload(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.renderMessages()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelFunc()
			return m, tea.Quit

		case "ctrl+o":
			if m.processingState == StateIdle {
				m.upload.Show()
				m.textarea.Blur()
				return m, textinput.Blink
			}
			return m, nil

		case "ctrl+l":
			m.session.Reset()
			m.frames = nil
			m.err = nil
			m.notice = "Chat cleared"
			if m.processingState == StateReplaying {
				m.processingState = StateIdle
			}
			m.renderMessages()
			return m, nil

		case "enter":
			if m.processingState != StateIdle {
				return m, nil
			}
			input := m.textarea.Value()
			if strings.TrimSpace(input) == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.err = nil
			m.notice = ""

			if detected := document.DetectPDFPath(input); detected.HasPath {
				return m, m.startIndexing(detected.Path, detected.Query)
			}
			return m, m.startTurn(input)
		}

	case IndexingComplete:
		m.processingState = StateIdle
		switch {
		case msg.Err != nil:
			m.err = fmt.Errorf("indexing failed: %w", msg.Err)
		case msg.Indexed:
			m.notice = "PDF indexed! Ready to chat."
		default:
			m.notice = fmt.Sprintf("%s is already indexed. Clear the chat to use another PDF.", msg.Info.FileName)
		}
		if msg.Err == nil && msg.PendingQuery != "" {
			return m, m.startTurn(msg.PendingQuery)
		}
		return m, nil

	case ChatResponseComplete:
		m.lastDuration = time.Since(m.thinkingStart)
		if msg.Err != nil {
			m.processingState = StateIdle
			if rag.IsFatal(msg.Err) {
				m.fatal = msg.Err
			} else {
				m.err = msg.Err
			}
			m.renderMessages()
			return m, nil
		}
		return m, m.startReplay(msg.Answer)

	case ReplayTickMsg:
		if m.processingState != StateReplaying {
			return m, nil
		}
		m.frame++
		if m.frame >= len(m.frames) {
			m.frames = nil
			m.processingState = StateIdle
			m.renderMessages()
			m.viewport.GotoBottom()
			return m, nil
		}
		m.renderMessages()
		m.viewport.GotoBottom()
		return m, m.replayTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// the user's turn lands in the history from the worker goroutine
		if m.processingState == StateThinking && len(m.session.History()) != m.renderedTurns {
			m.renderMessages()
			m.viewport.GotoBottom()
		}
		return m, tea.Batch(append(cmds, cmd)...)
	}

	if m.processingState == StateIdle && !m.upload.IsVisible() {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *ChatViewModel) startIndexing(path, pendingQuery string) tea.Cmd {
	m.processingState = StateIndexing
	m.notice = ""
	m.err = nil

	orchestrator, session, ctx := m.orchestrator, m.session, m.ctx
	return func() tea.Msg {
		logging.Info("indexing %s from the chat view", filepath.Base(path))
		indexed, err := orchestrator.UploadFile(ctx, session, path)
		info, _ := session.DocumentInfo()
		return IndexingComplete{Indexed: indexed, Info: info, Err: err, PendingQuery: pendingQuery}
	}
}

func (m *ChatViewModel) startTurn(prompt string) tea.Cmd {
	m.processingState = StateThinking
	m.thinkingStart = time.Now()

	orchestrator, session, ctx := m.orchestrator, m.session, m.ctx
	return func() tea.Msg {
		answer, err := orchestrator.Submit(ctx, session, prompt)
		if errors.Is(err, context.Canceled) {
			logging.Debug("turn cancelled on exit")
		}
		return ChatResponseComplete{Answer: answer, Err: err}
	}
}

// startReplay shows a finished answer line by line. Answers discarded by a
// reset in the meantime are not replayed.
func (m *ChatViewModel) startReplay(answer string) tea.Cmd {
	history := m.session.History()
	n := len(history)
	if n == 0 || history[n-1].Role != models.RoleAssistant || history[n-1].Content != answer {
		m.processingState = StateIdle
		m.renderMessages()
		return nil
	}

	m.frames = rag.Replay(answer)
	m.frame = 0
	if len(m.frames) <= 1 || m.opts.ReplayDelay <= 0 {
		m.frames = nil
		m.processingState = StateIdle
		m.renderMessages()
		m.viewport.GotoBottom()
		return nil
	}

	m.processingState = StateReplaying
	m.renderMessages()
	m.viewport.GotoBottom()
	return m.replayTick()
}

func (m ChatViewModel) replayTick() tea.Cmd {
	return tea.Tick(m.opts.ReplayDelay, func(time.Time) tea.Msg {
		return ReplayTickMsg{}
	})
}

func (m *ChatViewModel) renderMessages() {
	history := m.session.History()
	m.renderedTurns = len(history)

	// while replaying, the last turn is drawn from the current frame
	replaying := m.processingState == StateReplaying && len(m.frames) > 0 && len(history) > 0
	if replaying {
		history = history[:len(history)-1]
	}

	var b strings.Builder
	if len(history) == 0 && !replaying {
		b.WriteString(HelpTextSimpleStyle.Render("Upload a PDF with Ctrl+O, then ask about it. Questions the document cannot answer go to the web."))
	}

	for _, turn := range history {
		m.writeTurn(&b, turn.Role, m.safeRenderMarkdown(turn.Content))
	}

	if replaying {
		frame := m.frames[min(m.frame, len(m.frames)-1)]
		m.writeTurn(&b, models.RoleAssistant, m.safeRenderMarkdown(frame)+CursorStyle.Render(replayCursor))
	}

	m.viewport.SetContent(b.String())
}

func (m *ChatViewModel) writeTurn(b *strings.Builder, role models.Role, rendered string) {
	if role == models.RoleUser {
		label := UserMessageLabelStyle.Render("You:")
		b.WriteString(GetUserMessageContentStyle(m.viewport.Width).Render(label + "\n" + rendered))
	} else {
		label := AssistantMessageLabelStyle.Render("Assistant:")
		b.WriteString(GetAssistantMessageContentStyle(m.viewport.Width).Render(label + "\n" + rendered))
	}
	b.WriteString("\n\n")
}

func (m ChatViewModel) View() string {
	if m.fatal != nil {
		return errorStyle.Render(fmt.Sprintf("Configuration error\n\n%v\n\nFix the configuration and restart. Press Ctrl+C to quit.", m.fatal))
	}

	var b strings.Builder
	b.WriteString(TitleWithPaddingStyle.Render("Agentic RAG") + "\n")
	b.WriteString(statusBarStyle.Render(m.statusLine()) + "\n")

	b.WriteString(ViewportBorderStyle.Render(m.viewport.View()) + "\n")
	if scroll := m.renderScrollIndicator(); scroll != "" {
		b.WriteString(scroll)
	}
	b.WriteString("\n")
	b.WriteString(m.textarea.View() + "\n")
	b.WriteString(helpStyle.Render("Enter: Send • Ctrl+O: Upload PDF • Ctrl+L: Clear Chat • ↑/↓: Scroll • Esc: Quit"))

	main := b.String()
	view := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
	return m.upload.RenderOverlay(view)
}

func (m ChatViewModel) statusLine() string {
	line := fmt.Sprintf("LLM: %s | Search: %s", m.opts.ModelName, m.opts.Provider)

	switch m.processingState {
	case StateIndexing:
		line += " | " + m.spinner.View() + " Indexing PDF..."
	case StateThinking:
		line += fmt.Sprintf(" | %s Thinking... (%s)", m.spinner.View(), time.Since(m.thinkingStart).Round(time.Second))
	case StateReplaying:
		line += " | Answering..."
	case StateIdle:
		switch {
		case m.err != nil:
			line += " | " + RenderError(m.err.Error())
		case m.notice != "":
			line += " | " + RenderNotice(m.notice)
		case m.lastDuration > 0:
			line += fmt.Sprintf(" | Last answer in %s", m.lastDuration.Round(100*time.Millisecond))
		}
	}
	return line
}

func (m ChatViewModel) renderSidebar() string {
	inner := sidebarWidth - 4
	var b strings.Builder
	b.WriteString(SidebarHeaderStyle.Render("Document") + "\n\n")

	info, ok := m.session.DocumentInfo()
	if !ok {
		b.WriteString(SidebarLabelStyle.Render("No PDF indexed yet.\nPress Ctrl+O to upload one."))
	} else {
		b.WriteString(lipgloss.NewStyle().Bold(true).Width(inner).Render(info.FileName) + "\n")
		b.WriteString(SidebarLabelStyle.Render(fmt.Sprintf("%d pages • %d chunks • %s", info.Pages, info.Chunks, humanize.Bytes(uint64(max(info.Size, 0))))) + "\n\n")
		b.WriteString(SidebarPreviewStyle.Width(inner).Render(preview(info.Snippet, previewLength)))
	}

	b.WriteString("\n\n" + SidebarLabelStyle.Render("Ctrl+L: Clear Chat"))

	height := max(m.height-2, 10)
	return SidebarStyle.Width(sidebarWidth - 2).Height(height).Render(b.String())
}

func preview(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

func (m ChatViewModel) renderScrollIndicator() string {
	if m.viewport.TotalLineCount() <= m.viewport.Height {
		return ""
	}
	return ScrollIndicatorStyle.Render(fmt.Sprintf("Scroll: %d%% ↕", int(m.viewport.ScrollPercent()*100)))
}
