package dashboard

import "github.com/charmbracelet/lipgloss"

// Styles holds the dashboard's lipgloss styles
type Styles struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Section   lipgloss.Style
	Bar       lipgloss.Style
	Line      lipgloss.Style
	Muted     lipgloss.Style
	Status    lipgloss.Style
	Warning   lipgloss.Style
	Prompt    lipgloss.Style
	Key       lipgloss.Style
	Disabled  lipgloss.Style
}

// DefaultStyles returns the default dashboard styles
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245")),
		ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(lipgloss.Color("212")),
		Section:   lipgloss.NewStyle().Bold(true).MarginTop(1),
		Bar:       lipgloss.NewStyle().Foreground(lipgloss.Color("#82ca9d")),
		Line:      lipgloss.NewStyle().Foreground(lipgloss.Color("#8884d8")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Prompt: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1),
		Key:      lipgloss.NewStyle().Bold(true),
		Disabled: lipgloss.NewStyle().Faint(true).Strikethrough(true),
	}
}
