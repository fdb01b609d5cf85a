package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"
)

// Theme registry for the application
var Theme *tint.Registry

// palette maps UI roles to the active tint
type palette struct {
	accent    lipgloss.TerminalColor
	muted     lipgloss.TerminalColor
	highlight lipgloss.TerminalColor
	text      lipgloss.TerminalColor
	strong    lipgloss.TerminalColor
	good      lipgloss.TerminalColor
	bad       lipgloss.TerminalColor
}

var colors palette

var (
	TitleStyle            lipgloss.Style
	TitleWithPaddingStyle lipgloss.Style
	errorStyle            lipgloss.Style
	ErrorMessageStyle     lipgloss.Style
	NoticeStyle           lipgloss.Style
	statusBarStyle        lipgloss.Style
	helpStyle             lipgloss.Style
	HelpTextSimpleStyle   lipgloss.Style
	SpinnerStyle          lipgloss.Style

	UserMessageLabelStyle        lipgloss.Style
	AssistantMessageLabelStyle   lipgloss.Style
	UserMessageContentStyle      lipgloss.Style
	AssistantMessageContentStyle lipgloss.Style
	CursorStyle                  lipgloss.Style

	ViewportBorderStyle  lipgloss.Style
	ScrollIndicatorStyle lipgloss.Style

	// Sidebar
	SidebarStyle        lipgloss.Style
	SidebarHeaderStyle  lipgloss.Style
	SidebarLabelStyle   lipgloss.Style
	SidebarPreviewStyle lipgloss.Style

	// Upload overlay
	OverlayBorderStyle lipgloss.Style
	OverlayTitleStyle  lipgloss.Style
	OverlayLabelStyle  lipgloss.Style
)

func init() {
	tint.NewDefaultRegistry()
	tint.SetTint(tint.TintChalk)
	Theme = tint.DefaultRegistry

	colors = palette{
		accent:    tint.Purple(),
		muted:     tint.BrightBlack(),
		highlight: tint.Yellow(),
		text:      tint.Fg(),
		strong:    tint.White(),
		good:      tint.Green(),
		bad:       tint.Red(),
	}

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.accent)

	TitleWithPaddingStyle = TitleStyle.
		Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
		Foreground(colors.bad).
		Bold(true).
		Padding(1)

	ErrorMessageStyle = lipgloss.NewStyle().Foreground(colors.bad)

	NoticeStyle = lipgloss.NewStyle().Foreground(colors.good)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colors.muted).
		Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
		Foreground(colors.muted).
		Padding(1, 0, 0, 1)

	HelpTextSimpleStyle = lipgloss.NewStyle().Foreground(colors.muted)

	SpinnerStyle = lipgloss.NewStyle().Foreground(colors.accent)

	UserMessageLabelStyle = lipgloss.NewStyle().
		Foreground(colors.strong).
		Bold(true)

	AssistantMessageLabelStyle = lipgloss.NewStyle().
		Foreground(colors.accent).
		Bold(true)

	UserMessageContentStyle = lipgloss.NewStyle().
		Foreground(colors.text).
		Padding(0, 1).
		MarginBottom(1)

	AssistantMessageContentStyle = lipgloss.NewStyle().
		Foreground(colors.text).
		Padding(0, 1).
		MarginBottom(1)

	CursorStyle = lipgloss.NewStyle().Foreground(colors.accent)

	ViewportBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.strong).
		Padding(0, 1)

	ScrollIndicatorStyle = lipgloss.NewStyle().Foreground(colors.strong)

	SidebarStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.muted).
		Padding(0, 1)

	SidebarHeaderStyle = lipgloss.NewStyle().
		Foreground(colors.highlight).
		Bold(true)

	SidebarLabelStyle = lipgloss.NewStyle().Foreground(colors.muted)

	SidebarPreviewStyle = lipgloss.NewStyle().
		Foreground(colors.text).
		Italic(true)

	OverlayBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.highlight).
		Padding(1, 2)

	OverlayTitleStyle = lipgloss.NewStyle().
		Foreground(colors.highlight).
		Bold(true)

	OverlayLabelStyle = lipgloss.NewStyle().
		Foreground(colors.strong).
		Bold(true)
}

// ConfigureListStyles configures all list styles to match the application theme
func ConfigureListStyles(l *list.Model) {
	l.Styles.Title = TitleStyle
	l.Styles.TitleBar = lipgloss.NewStyle().
		Padding(0, 0, 1, 0)
	l.Styles.PaginationStyle = lipgloss.NewStyle().Foreground(colors.muted)
	l.Styles.HelpStyle = helpStyle
	l.Styles.FilterPrompt = lipgloss.NewStyle().Foreground(colors.highlight)
	l.Styles.FilterCursor = lipgloss.NewStyle().Foreground(colors.accent)
	l.Styles.StatusBar = lipgloss.NewStyle().
		Foreground(colors.muted).
		Padding(0, 0, 1, 0)
}

// CreateThemedDelegate creates a list delegate with application colors
func CreateThemedDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(colors.accent).
		Bold(true).
		BorderLeft(true).
		BorderForeground(colors.accent).
		Padding(0, 0, 0, 1)

	d.Styles.SelectedDesc = lipgloss.NewStyle().
		Foreground(colors.highlight).
		BorderLeft(true).
		BorderForeground(colors.accent).
		Padding(0, 0, 0, 1)

	d.Styles.NormalTitle = lipgloss.NewStyle().
		Foreground(colors.text).
		Padding(0, 0, 0, 2)

	d.Styles.NormalDesc = lipgloss.NewStyle().
		Foreground(colors.muted).
		Padding(0, 0, 0, 2)

	return d
}

// RenderError renders an error message
func RenderError(msg string) string {
	return ErrorMessageStyle.Render("✗ " + msg)
}

// RenderNotice renders a success message
func RenderNotice(msg string) string {
	return NoticeStyle.Render("✓ " + msg)
}

// GetUserMessageContentStyle returns a style for user message content with given width
func GetUserMessageContentStyle(width int) lipgloss.Style {
	return UserMessageContentStyle.
		Width(max(width-4, 10)).
		Align(lipgloss.Right)
}

// GetAssistantMessageContentStyle returns a style for assistant message content with given width
func GetAssistantMessageContentStyle(width int) lipgloss.Style {
	return AssistantMessageContentStyle.
		Width(max(width-4, 10))
}

// GetOverlayBorderStyle returns the overlay border with dynamic width
func GetOverlayBorderStyle(width int) lipgloss.Style {
	return OverlayBorderStyle.Width(width - 4)
}
