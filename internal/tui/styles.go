// Package tui implements the live progress watcher shown by
// `forge watch`.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary = lipgloss.Color("#7C3AED")
	ColorSuccess = lipgloss.Color("#10B981")
	ColorError   = lipgloss.Color("#EF4444")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorText    = lipgloss.Color("#F3F4F6")
)

// Styles holds the lipgloss styles used by the watcher.
type Styles struct {
	App       lipgloss.Style
	Title     lipgloss.Style
	Status    lipgloss.Style
	Package   lipgloss.Style
	Message   lipgloss.Style
	Counts    lipgloss.Style
	Completed lipgloss.Style
	Failed    lipgloss.Style
	Help      lipgloss.Style
}

// DefaultStyles returns the watcher's styling.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),
		Status: lipgloss.NewStyle().
			Foreground(ColorText),
		Package: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Message: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Counts: lipgloss.NewStyle().
			Foreground(ColorText),
		Completed: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Failed: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}
