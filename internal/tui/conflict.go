package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/operation"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// conflictItem implements list.Item for one conflict resolution choice
type conflictItem struct {
	choice operation.ConflictChoice
}

func (i conflictItem) Title() string {
	if i.choice.ApplyToAll {
		return i.choice.Mode.String() + " all"
	}
	return i.choice.Mode.String()
}

func (i conflictItem) Description() string {
	if i.choice.ApplyToAll {
		return fmt.Sprintf("%s for this and every later conflict", i.choice.Mode)
	}
	return i.choice.Mode.Describe()
}

func (i conflictItem) FilterValue() string {
	return i.Title()
}

// conflictItems lists every mode, each non-abort mode followed by its
// apply-to-all variant.
func conflictItems() []list.Item {
	var items []list.Item
	for _, mode := range config.ConflictModes() {
		items = append(items, conflictItem{choice: operation.ConflictChoice{Mode: mode}})
		if mode != config.Abort {
			items = append(items, conflictItem{choice: operation.ConflictChoice{Mode: mode, ApplyToAll: true}})
		}
	}
	return items
}

// ConflictModel is the bubbletea model asking how to resolve one conflict.
type ConflictModel struct {
	list      list.Model
	target    string
	choice    operation.ConflictChoice
	chosen    bool
	cancelled bool
}

// NewConflictPicker creates a picker for an existing target path.
func NewConflictPicker(target string) ConflictModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(conflictItems(), delegate, 80, 20)
	l.Title = "File already exists: " + target
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	return ConflictModel{list: l, target: target}
}

func (m ConflictModel) Init() tea.Cmd {
	return nil
}

func (m ConflictModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(conflictItem); ok {
				m.choice = item.choice
				m.chosen = true
				return m, tea.Quit
			}

		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ConflictModel) View() string {
	if m.chosen || m.cancelled {
		return ""
	}
	help := helpStyle.Render("[enter] Select  [↑/↓] Move  [q] Abort")
	return m.list.View() + "\n" + help
}

// Result returns the selected choice. Cancelling counts as abort.
func (m ConflictModel) Result() operation.ConflictChoice {
	if !m.chosen {
		return operation.ConflictChoice{Mode: config.Abort}
	}
	return m.choice
}
