package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"agentic-rag/internal/document"
)

// UploadRequested is sent when the user picks a PDF in the upload overlay
type UploadRequested struct {
	Path string
}

// UploadCancelled is sent when the overlay is closed without a choice
type UploadCancelled struct{}

// UploadModel is the foreground of the upload overlay: a single path input
type UploadModel struct {
	input  textinput.Model
	err    string
	width  int
	height int
}

func NewUploadModel() UploadModel {
	ti := textinput.New()
	ti.Placeholder = "/path/to/document.pdf"
	ti.CharLimit = 1024
	ti.Width = 40

	return UploadModel{input: ti}
}

func (m UploadModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *UploadModel) reset() {
	m.input.SetValue("")
	m.input.Focus()
	m.err = ""
}

func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m, nil
			}
			result := document.DetectPDFPath(value)
			if !result.HasPath {
				m.err = "No PDF found at that path"
				return m, nil
			}
			return m, func() tea.Msg {
				return UploadRequested{Path: result.Path}
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			if m.input.Value() != "" {
				m.input.SetValue("")
				m.err = ""
				return m, nil
			}
			return m, func() tea.Msg {
				return UploadCancelled{}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.overlayWidth() - 12
	}

	m.input, cmd = m.input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.err = ""
	}
	return m, cmd
}

func (m UploadModel) overlayWidth() int {
	return max(m.width/2, 48)
}

func (m UploadModel) View() string {
	var content strings.Builder
	content.WriteString(OverlayTitleStyle.Render("Upload PDF"))
	content.WriteString("\n\n")
	content.WriteString(OverlayLabelStyle.Render("Path: "))
	content.WriteString(m.input.View())
	content.WriteString("\n\n")
	if m.err != "" {
		content.WriteString(RenderError(m.err))
		content.WriteString("\n\n")
	}
	content.WriteString(HelpTextSimpleStyle.Render("Enter: Index • Esc: Cancel"))

	return GetOverlayBorderStyle(m.overlayWidth()).Render(content.String())
}

// UploadOverlayModel wraps the upload model with the overlay library
type UploadOverlayModel struct {
	upload  UploadModel
	visible bool
}

func NewUploadOverlayModel() UploadOverlayModel {
	return UploadOverlayModel{upload: NewUploadModel()}
}

func (m *UploadOverlayModel) Show() {
	m.upload.reset()
	m.visible = true
}

func (m *UploadOverlayModel) Hide() {
	m.visible = false
}

func (m *UploadOverlayModel) IsVisible() bool {
	return m.visible
}

func (m *UploadOverlayModel) UpdateSize(width, height int) {
	mdl, _ := m.upload.Update(tea.WindowSizeMsg{Width: width, Height: height})
	m.upload = mdl.(UploadModel)
}

func (m *UploadOverlayModel) UpdateUpload(msg tea.Msg) tea.Cmd {
	if !m.visible {
		return nil
	}
	mdl, cmd := m.upload.Update(msg)
	m.upload = mdl.(UploadModel)
	return cmd
}

func (m UploadOverlayModel) RenderOverlay(backgroundView string) string {
	if !m.visible {
		return backgroundView
	}

	o := overlay.New(
		m.upload,
		&staticViewModel{content: backgroundView},
		overlay.Center,
		overlay.Top,
		0,
		2,
	)
	return o.View()
}

// staticViewModel renders fixed content as the overlay background
type staticViewModel struct {
	content string
}

func (m staticViewModel) Init() tea.Cmd {
	return nil
}

func (m staticViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m staticViewModel) View() string {
	return m.content
}
