package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	forgeprogress "forge/internal/progress"
)

const maxVisibleMessages = 8

type tickMsg time.Time

type stateMsg struct {
	state *forgeprogress.State
	err   error
}

// Model is the bubbletea model backing the progress watcher.
type Model struct {
	path     string
	interval time.Duration
	styles   Styles

	state   *forgeprogress.State
	readErr error

	bar     progress.Model
	spinner spinner.Model
	quit    bool
}

// NewModel creates a watcher for the given progress file.
func NewModel(path string, interval time.Duration) *Model {
	if interval <= 0 {
		interval = time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	bar := progress.New(progress.WithDefaultGradient())

	return &Model{
		path:     path,
		interval: interval,
		styles:   DefaultStyles(),
		bar:      bar,
		spinner:  sp,
	}
}

// Run starts the watcher and blocks until it exits.
func Run(path string, interval time.Duration) error {
	_, err := tea.NewProgram(NewModel(path, interval)).Run()
	return err
}

func (m *Model) readState() tea.Cmd {
	return func() tea.Msg {
		state, err := forgeprogress.Read(m.path)
		return stateMsg{state: state, err: err}
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.readState(), m.tick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 60 {
			width = 60
		}
		if width > 0 {
			m.bar.Width = width
		}

	case tickMsg:
		return m, tea.Batch(m.readState(), m.tick())

	case stateMsg:
		m.state = msg.state
		m.readErr = msg.err
		if m.state != nil {
			return m, m.bar.SetPercent(float64(m.state.Progress) / 100)
		}

	case progress.FrameMsg:
		barModel, cmd := m.bar.Update(msg)
		m.bar = barModel.(progress.Model)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Forge"))
	b.WriteString("\n\n")

	if m.readErr != nil {
		b.WriteString(m.styles.Failed.Render(fmt.Sprintf("cannot read progress: %v", m.readErr)))
		b.WriteString("\n")
		return m.styles.App.Render(b.String())
	}

	state := m.state
	if state == nil || state.Status == forgeprogress.StatusIdle {
		b.WriteString(m.styles.Message.Render("No run in progress."))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Help.Render("q to quit"))
		return m.styles.App.Render(b.String())
	}

	switch state.Status {
	case forgeprogress.StatusRunning:
		line := m.spinner.View() + m.styles.Status.Render(" "+state.Mode)
		if state.CurrentPackage != "" {
			line += m.styles.Status.Render(": installing ") +
				m.styles.Package.Render(state.CurrentPackage)
		}
		b.WriteString(line)
	case forgeprogress.StatusCompleted:
		b.WriteString(m.styles.Completed.Render("✓ " + state.Mode + " completed"))
	case forgeprogress.StatusFailed:
		b.WriteString(m.styles.Failed.Render("✗ " + state.Mode + " failed"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.bar.View())
	b.WriteString("\n\n")

	b.WriteString(m.styles.Counts.Render(fmt.Sprintf(
		"%d installed · %d failed · %d total",
		state.Stats.Installed, state.Stats.Failed, state.Stats.Total)))
	b.WriteString("\n\n")

	messages := state.Messages
	if len(messages) > maxVisibleMessages {
		messages = messages[len(messages)-maxVisibleMessages:]
	}
	for _, msg := range messages {
		b.WriteString(m.styles.Message.Render(
			msg.Time.Local().Format("15:04:05") + "  " + msg.Text))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("q to quit"))
	return m.styles.App.Render(b.String())
}
