package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel asks a yes/no question. The default answer is no.
type ConfirmModel struct {
	title    string
	lines    []string
	answered bool
	yes      bool
}

// NewConfirm creates a confirmation showing lines under title.
func NewConfirm(title string, lines []string) ConfirmModel {
	return ConfirmModel{title: title, lines: lines}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch strings.ToLower(key.String()) {
	case "y":
		m.answered, m.yes = true, true
		return m, tea.Quit
	case "n", "enter", "q", "esc", "ctrl+c":
		m.answered, m.yes = true, false
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.answered {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")
	for _, line := range m.lines {
		sb.WriteString(warnStyle.Render("  ⚠ " + line))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("Continue? [y/N]"))
	return sb.String()
}

// Confirmed reports whether the user answered yes.
func (m ConfirmModel) Confirmed() bool {
	return m.yes
}
