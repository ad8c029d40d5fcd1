package tui

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/operation"
)

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Prompter asks questions with bubbletea programs. When not interactive
// every question fails with a NonInteractive error.
type Prompter struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter returns a prompter on the process terminal.
func NewPrompter() *Prompter {
	return &Prompter{in: os.Stdin, out: os.Stderr, interactive: IsInteractive()}
}

// NewPrompterWith returns a prompter reading in and drawing on out.
func NewPrompterWith(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: in, out: out, interactive: interactive}
}

var _ operation.Prompter = (*Prompter)(nil)

func (p *Prompter) Interactive() bool {
	return p.interactive
}

func (p *Prompter) run(m tea.Model) (tea.Model, error) {
	prog := tea.NewProgram(m, tea.WithInput(p.in), tea.WithOutput(p.out))
	final, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}

// PromptConflict asks how to resolve an existing target.
func (p *Prompter) PromptConflict(target string) (operation.ConflictChoice, error) {
	if !p.interactive {
		return operation.ConflictChoice{}, errors.NonInteractive("use --on-conflict or set options.on_conflict in config")
	}
	final, err := p.run(NewConflictPicker(target))
	if err != nil {
		return operation.ConflictChoice{}, err
	}
	return final.(ConflictModel).Result(), nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(title string, lines []string, hint string) (bool, error) {
	if !p.interactive {
		return false, errors.NonInteractive(hint)
	}
	final, err := p.run(NewConfirm(title, lines))
	if err != nil {
		return false, err
	}
	return final.(ConfirmModel).Confirmed(), nil
}

// ConfirmRemove lists the safety warnings and asks whether to remove anyway.
func (p *Prompter) ConfirmRemove(warnings []operation.SafetyWarning) (bool, error) {
	var lines []string
	for _, w := range warnings {
		for _, line := range operation.WarningLines(w) {
			lines = append(lines, w.Path+": "+line)
		}
	}
	return p.Confirm("Remove workspaces with unsaved work?", lines, "use --force to remove anyway")
}
