package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/operation"
	"github.com/offshoot-dev/offshoot/internal/workspace"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConflictItems(t *testing.T) {
	var titles []string
	for _, it := range conflictItems() {
		titles = append(titles, it.(conflictItem).Title())
	}

	want := []string{"abort", "skip", "skip all", "overwrite", "overwrite all", "backup", "backup all"}
	if strings.Join(titles, ",") != strings.Join(want, ",") {
		t.Errorf("titles = %v, want %v", titles, want)
	}
}

func TestConflictItem_Description(t *testing.T) {
	single := conflictItem{choice: operation.ConflictChoice{Mode: config.Backup}}
	if got := single.Description(); got != config.Backup.Describe() {
		t.Errorf("Description() = %q", got)
	}

	all := conflictItem{choice: operation.ConflictChoice{Mode: config.Skip, ApplyToAll: true}}
	if got := all.Description(); !strings.Contains(got, "every later conflict") {
		t.Errorf("Description() = %q", got)
	}
}

func TestConflictModel_Select(t *testing.T) {
	tests := []struct {
		name  string
		downs int
		want  operation.ConflictChoice
	}{
		{"first is abort", 0, operation.ConflictChoice{Mode: config.Abort}},
		{"skip", 1, operation.ConflictChoice{Mode: config.Skip}},
		{"skip all", 2, operation.ConflictChoice{Mode: config.Skip, ApplyToAll: true}},
		{"backup all", 6, operation.ConflictChoice{Mode: config.Backup, ApplyToAll: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m tea.Model = NewConflictPicker("/repo/.env")
			for i := 0; i < tt.downs; i++ {
				m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
			}
			m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if cmd == nil {
				t.Fatal("enter should quit")
			}

			got := m.(ConflictModel).Result()
			if got != tt.want {
				t.Errorf("Result() = %+v, want %+v", got, tt.want)
			}
			if m.View() != "" {
				t.Error("View() should be empty after a choice")
			}
		})
	}
}

func TestConflictModel_CancelIsAbort(t *testing.T) {
	for _, key := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(key.String(), func(t *testing.T) {
			var m tea.Model = NewConflictPicker("x")
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
			m, cmd := m.Update(key)
			if cmd == nil {
				t.Fatal("cancel should quit")
			}
			if got := m.(ConflictModel).Result(); got.Mode != config.Abort || got.ApplyToAll {
				t.Errorf("Result() = %+v, want abort", got)
			}
		})
	}
}

func TestConflictModel_View(t *testing.T) {
	m := NewConflictPicker("/repo/.env")
	view := m.View()
	for _, want := range []string{"File already exists: /repo/.env", "abort", "[enter] Select"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestConfirmModel(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want bool
	}{
		{keyRunes("y"), true},
		{keyRunes("Y"), true},
		{keyRunes("n"), false},
		{tea.KeyMsg{Type: tea.KeyEnter}, false},
		{tea.KeyMsg{Type: tea.KeyEsc}, false},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			var m tea.Model = NewConfirm("Proceed?", nil)
			m, cmd := m.Update(tt.key)
			if cmd == nil {
				t.Fatal("answer should quit")
			}
			if got := m.(ConfirmModel).Confirmed(); got != tt.want {
				t.Errorf("Confirmed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirmModel_IgnoresOtherKeys(t *testing.T) {
	var m tea.Model = NewConfirm("Proceed?", []string{"a.txt: 1 modified file"})
	m, cmd := m.Update(keyRunes("x"))
	if cmd != nil {
		t.Error("unrelated key should not quit")
	}

	view := m.View()
	if !strings.Contains(view, "a.txt: 1 modified file") || !strings.Contains(view, "[y/N]") {
		t.Errorf("View() = %q", view)
	}
}

func TestPrompter_NonInteractive(t *testing.T) {
	p := NewPrompterWith(strings.NewReader(""), &strings.Builder{}, false)

	if p.Interactive() {
		t.Error("Interactive() = true")
	}

	if _, err := p.PromptConflict("x"); !errors.Is(err, errors.KindNonInteractive) {
		t.Errorf("PromptConflict() error = %v, want NonInteractive", err)
	}

	warnings := []operation.SafetyWarning{{Path: "/w", Status: workspace.Status{Modified: 1}}}
	if _, err := p.ConfirmRemove(warnings); !errors.Is(err, errors.KindNonInteractive) {
		t.Errorf("ConfirmRemove() error = %v, want NonInteractive", err)
	}
}
