// Package tui provides the terminal prompts offshoot shows when config does
// not decide for it.
//
// # Conflict Picker
//
// When a link or copy target already exists and no conflict mode applies,
// the picker offers every mode plus an "all" variant that applies the choice
// to the rest of the invocation:
//
//	choice, err := tui.NewPrompter().PromptConflict(target)
//	if choice.ApplyToAll {
//	    // use choice.Mode for later conflicts without asking
//	}
//
// Quitting the picker counts as abort.
//
// # Confirmation
//
// ConfirmModel asks a yes/no question with the answer defaulting to no. It
// backs remove confirmation and trust approval.
//
// # Non-interactive use
//
// IsInteractive checks stdin and stdout with go-isatty. A Prompter that is
// not interactive returns a NonInteractive error instead of blocking.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
