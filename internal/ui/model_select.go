package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"agentic-rag/internal/ollama"
)

// ModelSelectModel lets the user pick a chat model when the configured one
// is not pulled on the local endpoint
type ModelSelectModel struct {
	list    list.Model
	missing string
	width   int
	height  int
}

type modelItem struct {
	model ollama.Model
}

func (i modelItem) Title() string { return i.model.Name }
func (i modelItem) Description() string {
	desc := humanize.Bytes(uint64(max(i.model.Size, 0)))
	if i.model.Family != "" {
		desc = i.model.Family + " | " + desc
	}
	return desc
}
func (i modelItem) FilterValue() string { return i.model.Name }

// ModelSelected is sent when the user has chosen a chat model
type ModelSelected struct {
	Name string
}

func NewModelSelectModel(models []ollama.Model, missing string, width, height int) ModelSelectModel {
	items := make([]list.Item, len(models))
	for i, m := range models {
		items[i] = modelItem{model: m}
	}

	l := list.New(items, CreateThemedDelegate(), width, height-4)
	l.Title = "Select Chat Model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	ConfigureListStyles(&l)

	return ModelSelectModel{
		list:    l,
		missing: missing,
		width:   width,
		height:  height,
	}
}

func (m ModelSelectModel) Init() tea.Cmd {
	return nil
}

func (m ModelSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" && m.list.FilterState() != list.Filtering {
			selected, ok := m.list.SelectedItem().(modelItem)
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return ModelSelected{Name: selected.model.Name}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ModelSelectModel) View() string {
	status := fmt.Sprintf("Model %q is not available on the endpoint", m.missing)
	if len(m.list.Items()) == 0 {
		status += ", and no models are pulled. Run `ollama pull " + m.missing + "` first."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.list.View(),
		statusBarStyle.Render(status),
		helpStyle.Render("↑/↓: Navigate • /: Filter • Enter: Select • Ctrl+C: Quit"),
	)
}
