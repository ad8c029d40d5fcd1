package operation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/offshoot-dev/offshoot/internal/audit"
	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/hook"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/output"
	"github.com/offshoot-dev/offshoot/internal/system"
	"github.com/offshoot-dev/offshoot/internal/trust"
	"github.com/offshoot-dev/offshoot/internal/workspace"
)

// ConflictChoice is the answer to an interactive conflict prompt.
type ConflictChoice struct {
	Mode config.ConflictMode
	// ApplyToAll makes Mode the override for every later conflict in the
	// same invocation.
	ApplyToAll bool
}

// SafetyWarning describes why removing a workspace may lose work.
type SafetyWarning struct {
	Path     string
	Status   workspace.Status
	Unpushed workspace.Unpushed
}

// Prompter asks the user to decide when configuration does not.
type Prompter interface {
	// Interactive reports whether questions can be asked at all.
	Interactive() bool
	PromptConflict(target string) (ConflictChoice, error)
	ConfirmRemove(warnings []SafetyWarning) (bool, error)
}

// Deps carries what add and remove need from the outside world.
type Deps struct {
	Provider workspace.Provider
	// Exec runs hooks. Nil uses the system default.
	Exec     system.CommandExecutor
	Printer  *output.Printer
	Prompter Prompter
	Trust    *trust.Store
	// Audit records adds, removes and hook failures. Nil records nothing.
	Audit *audit.Logger
	// GlobalConfigDir holds the user-wide config. Empty means the XDG default.
	GlobalConfigDir string
	// Cwd anchors relative paths. Empty means the process working directory.
	Cwd string
}

func (d *Deps) printer() *output.Printer {
	if d.Printer == nil {
		return output.Discard()
	}
	return d.Printer
}

func (d *Deps) prompter() Prompter {
	if d.Prompter == nil {
		return noPrompter{}
	}
	return d.Prompter
}

func (d *Deps) trustStore() *trust.Store {
	if d.Trust == nil {
		return trust.NewStore("")
	}
	return d.Trust
}

func (d *Deps) globalConfigDir() string {
	if d.GlobalConfigDir == "" {
		return config.GlobalConfigDir()
	}
	return d.GlobalConfigDir
}

func (d *Deps) hooks() *hook.Executor {
	return hook.NewExecutor(d.Exec, d.printer())
}

// record appends an audit event. Failures are logged and otherwise ignored.
func (d *Deps) record(kind audit.EventType, r repo, path, details string) {
	if d.Audit == nil {
		return
	}
	if err := d.Audit.LogEvent(kind, r.mainPath, path, details); err != nil {
		logging.Debug("failed to write audit event", "type", kind, "error", err)
	}
}

// absPath makes p absolute against Cwd.
func (d *Deps) absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	cwd := d.Cwd
	if cwd == "" {
		var err error
		if cwd, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	return filepath.Join(cwd, p), nil
}

// repo identifies the repository an operation runs against.
type repo struct {
	// root is where config is read and pre_add/post_remove hooks run.
	root string
	// mainPath is the canonical main workspace, the identity trust is keyed on.
	mainPath string
}

func (d *Deps) detect(ctx context.Context) (repo, error) {
	p := d.Provider
	if p == nil || !p.IsInsideRepo(ctx) {
		return repo{}, errors.NotInRepo()
	}
	root, err := p.RepositoryRoot(ctx)
	if err != nil {
		return repo{}, err
	}
	mainPath, err := p.MainWorkspacePathFor(ctx, root)
	if err != nil {
		return repo{}, err
	}
	logging.Debug("repository detected", "kind", p.Kind(), "root", root, "main", mainPath)
	return repo{root: root, mainPath: mainPath}, nil
}

// TrustHint is the extra advice printed when hooks are not trusted.
type TrustHint string

// gate refuses hooks that are not trusted for r, printing them for review.
func (d *Deps) gate(r repo, cfg *config.Config, hint TrustHint) error {
	if !cfg.Hooks.HasHooks() {
		return nil
	}
	trusted, err := d.trustStore().IsTrusted(r.mainPath, cfg.Hooks)
	if err != nil {
		return err
	}
	if trusted {
		return nil
	}

	p := d.printer()
	hook.Display(p, cfg.Hooks)
	p.Notef("")
	p.Error("Configuration is not trusted.")
	p.Notef("The config file contains hooks that can execute arbitrary commands.")
	p.Notef("Review them, then run:")
	p.Notef("  offshoot trust")
	if hint != "" {
		p.Notef("")
		p.Notef("Or skip hooks:")
		p.Notef("  %s", hint)
	}
	return errors.HooksNotTrusted()
}

// recheck reloads the config right before hooks run. The hooks must be the
// ones approved at gate time and must still be trusted.
func (d *Deps) recheck(r repo, approved config.Hooks) error {
	fresh, err := config.Load(r.root)
	if err != nil {
		return err
	}
	if !fresh.Hooks.Equal(approved) {
		logging.Warn("hooks changed after trust check", "root", r.root)
		return errors.ConfigModifiedAfterTrust()
	}
	if !fresh.Hooks.HasHooks() {
		return nil
	}
	trusted, err := d.trustStore().IsTrusted(r.mainPath, fresh.Hooks)
	if err != nil {
		return err
	}
	if !trusted {
		return errors.ConfigModifiedAfterTrust()
	}
	return nil
}

// warnPostHook reports a failed post_* hook without failing the operation.
func (d *Deps) warnPostHook(r repo, path, phase string, err error, note string) {
	p := d.printer()
	logging.Warn("post hook failed", "phase", phase, "error", err)
	d.record(audit.EventHookFailed, r, path, fmt.Sprintf("%s: %v", phase, err))
	p.Warn("%s hook failed: %v", phase, err)
	p.Notef("  %s", note)
}

type noPrompter struct{}

func (noPrompter) Interactive() bool { return false }

func (noPrompter) PromptConflict(target string) (ConflictChoice, error) {
	return ConflictChoice{}, errors.NonInteractive("use --on-conflict or set options.on_conflict in config")
}

func (noPrompter) ConfirmRemove([]SafetyWarning) (bool, error) {
	return false, errors.NonInteractive("use --force to remove anyway")
}
