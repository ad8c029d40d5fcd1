// Package app provides the application context for offshoot.
// It allows dependency injection for testing.
package app

import (
	"context"
	"os"

	"github.com/offshoot-dev/offshoot/internal/audit"
	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/operation"
	"github.com/offshoot-dev/offshoot/internal/output"
	"github.com/offshoot-dev/offshoot/internal/system"
	"github.com/offshoot-dev/offshoot/internal/trust"
	"github.com/offshoot-dev/offshoot/internal/tui"
	"github.com/offshoot-dev/offshoot/internal/workspace"
)

// Prompter is what commands ask the user through.
type Prompter interface {
	operation.Prompter
	Confirm(title string, lines []string, hint string) (bool, error)
}

// App holds the application dependencies
type App struct {
	// Exec runs git, jj and hook commands
	Exec system.CommandExecutor

	// Printer writes user-facing output
	Printer *output.Printer

	// Prompter asks questions when config does not decide
	Prompter Prompter

	// Trust holds the trust records
	Trust *trust.Store

	// Audit records workspace and trust events
	Audit *audit.Logger

	// GlobalConfigDir holds the user-wide config
	GlobalConfigDir string

	// Cwd is where the repository is detected from
	Cwd string

	// Provider skips detection when set
	Provider workspace.Provider
}

// Option is a function that configures the App
type Option func(*App)

// WithExecutor sets a custom command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Exec = exec
	}
}

// WithPrinter sets a custom printer
func WithPrinter(p *output.Printer) Option {
	return func(a *App) {
		a.Printer = p
	}
}

// WithPrompter sets a custom prompter
func WithPrompter(p Prompter) Option {
	return func(a *App) {
		a.Prompter = p
	}
}

// WithTrustDir stores trust records under dir
func WithTrustDir(dir string) Option {
	return func(a *App) {
		a.Trust = trust.NewStore(dir)
	}
}

// WithAuditDir stores audit logs under dir
func WithAuditDir(dir string) Option {
	return func(a *App) {
		a.Audit = audit.NewLogger(dir)
	}
}

// WithGlobalConfigDir sets where the global config is read from
func WithGlobalConfigDir(dir string) Option {
	return func(a *App) {
		a.GlobalConfigDir = dir
	}
}

// WithCwd sets the working directory
func WithCwd(dir string) Option {
	return func(a *App) {
		a.Cwd = dir
	}
}

// WithProvider sets a fixed workspace provider
func WithProvider(p workspace.Provider) Option {
	return func(a *App) {
		a.Provider = p
	}
}

// New creates a new App with the given options.
// Unset dependencies fall back to the process terminal and XDG locations.
func New(opts ...Option) *App {
	app := &App{}

	for _, opt := range opts {
		opt(app)
	}

	if app.Exec == nil {
		app.Exec = system.DefaultExecutor()
	}
	if app.Printer == nil {
		app.Printer = output.New(os.Stdout, os.Stderr)
	}
	if app.Prompter == nil {
		app.Prompter = tui.NewPrompter()
	}
	if app.Trust == nil {
		app.Trust = trust.NewStore("")
	}
	if app.Audit == nil {
		app.Audit = audit.NewLogger("")
	}
	if app.GlobalConfigDir == "" {
		app.GlobalConfigDir = config.GlobalConfigDir()
	}
	if app.Cwd == "" {
		if cwd, err := os.Getwd(); err == nil {
			app.Cwd = cwd
		} else {
			logging.Debug("failed to get working directory", "error", err)
		}
	}

	return app
}

// Repo is a detected repository.
type Repo struct {
	Provider workspace.Provider
	// Root is the main repository root, where config lives.
	Root string
	// MainPath is the canonical main workspace path trust is keyed on.
	MainPath string
}

// Workspace returns the provider for dir, detecting git or jj. An empty dir
// means Cwd.
func (a *App) Workspace(ctx context.Context, dir string) (workspace.Provider, error) {
	if a.Provider != nil {
		return a.Provider, nil
	}
	if dir == "" {
		dir = a.Cwd
	}
	kind, err := workspace.DetectAt(ctx, a.Exec, dir)
	if err != nil {
		return nil, err
	}
	return workspace.New(kind, dir, a.Exec), nil
}

// Repo detects the repository containing dir.
func (a *App) Repo(ctx context.Context, dir string) (Repo, error) {
	p, err := a.Workspace(ctx, dir)
	if err != nil {
		return Repo{}, err
	}
	if !p.IsInsideRepo(ctx) {
		return Repo{}, errors.NotInRepo()
	}
	root, err := p.RepositoryRoot(ctx)
	if err != nil {
		return Repo{}, err
	}
	mainPath, err := p.MainWorkspacePathFor(ctx, root)
	if err != nil {
		return Repo{}, err
	}
	return Repo{Provider: p, Root: root, MainPath: mainPath}, nil
}

// Deps returns the dependencies add and remove run with.
func (a *App) Deps(ctx context.Context) (operation.Deps, error) {
	p, err := a.Workspace(ctx, "")
	if err != nil {
		return operation.Deps{}, err
	}
	return operation.Deps{
		Provider:        p,
		Exec:            a.Exec,
		Printer:         a.Printer,
		Prompter:        a.Prompter,
		Trust:           a.Trust,
		Audit:           a.Audit,
		GlobalConfigDir: a.GlobalConfigDir,
		Cwd:             a.Cwd,
	}, nil
}

// Default is the application instance commands use. The root command
// replaces it once flags are parsed.
var Default *App

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault clears the default instance.
func ResetDefault() {
	Default = nil
}
