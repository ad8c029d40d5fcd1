package errors

import (
	"errors"
	"fmt"
)

// Exit codes for offshoot
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInterrupted  = 130
)

// Kind classifies an Error. Kinds are comparable with errors.Is:
//
//	errors.Is(err, errors.KindHooksNotTrusted)
type Kind int

const (
	KindUnknown Kind = iota
	KindNotInRepo
	KindSourceNotFound
	KindSymlinkFailed
	KindCopyFailed
	KindAborted
	KindNonInteractive
	KindHooksNotTrusted
	KindConfigModifiedAfterTrust
	KindHookExecutionFailed
	KindHookFailed
	KindTrustFileCorrupted
	KindTrustFileSerialization
	KindWorkspaceHasUncommittedChanges
	KindWorkspaceHasUnpushedCommits
	KindCannotRemoveMainWorkspace
	KindWorkspaceNotFound
	KindVcsCommandFailed
	KindWindowsSymlinkPermission
	KindUnsupportedPlatform
	KindConfigParse
	KindConfigValidation
	KindConfigNotFound
	KindNoHooksDefined
	KindPathRequired
)

var kindNames = map[Kind]string{
	KindUnknown:                        "unknown",
	KindNotInRepo:                      "not in repository",
	KindSourceNotFound:                 "source not found",
	KindSymlinkFailed:                  "symlink failed",
	KindCopyFailed:                     "copy failed",
	KindAborted:                        "aborted",
	KindNonInteractive:                 "non-interactive",
	KindHooksNotTrusted:                "hooks not trusted",
	KindConfigModifiedAfterTrust:       "config modified after trust check",
	KindHookExecutionFailed:            "hook execution failed",
	KindHookFailed:                     "hook failed",
	KindTrustFileCorrupted:             "trust file corrupted",
	KindTrustFileSerialization:         "trust file serialization",
	KindWorkspaceHasUncommittedChanges: "workspace has uncommitted changes",
	KindWorkspaceHasUnpushedCommits:    "workspace has unpushed commits",
	KindCannotRemoveMainWorkspace:      "cannot remove main workspace",
	KindWorkspaceNotFound:              "workspace not found",
	KindVcsCommandFailed:               "vcs command failed",
	KindWindowsSymlinkPermission:       "windows symlink permission",
	KindUnsupportedPlatform:            "unsupported platform",
	KindConfigParse:                    "config parse",
	KindConfigValidation:               "config validation",
	KindConfigNotFound:                 "config not found",
	KindNoHooksDefined:                 "no hooks defined",
	KindPathRequired:                   "path required",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error implements error so a Kind can be used as an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}

// OffshootError is the base error type for offshoot
type OffshootError struct {
	Kind    Kind
	Code    int
	Message string
	Cause   error

	// Stderr holds raw VCS output for KindVcsCommandFailed.
	Stderr string
	// HookExitCode is the exit status of a failed hook command.
	HookExitCode int
}

func (e *OffshootError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *OffshootError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is this error's Kind.
func (e *OffshootError) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}

// ExitCode returns the exit code for this error
func (e *OffshootError) ExitCode() int {
	return e.Code
}

// New creates a new OffshootError
func New(kind Kind, message string) *OffshootError {
	return &OffshootError{
		Kind:    kind,
		Code:    exitCodeFor(kind),
		Message: message,
	}
}

// Wrap wraps an existing error with an OffshootError
func Wrap(kind Kind, message string, cause error) *OffshootError {
	return &OffshootError{
		Kind:    kind,
		Code:    exitCodeFor(kind),
		Message: message,
		Cause:   cause,
	}
}

func exitCodeFor(kind Kind) int {
	if kind == KindAborted {
		return ExitSuccess
	}
	return ExitGeneralError
}

// Common error constructors

// NotInRepo returns an error for a directory outside any supported repository.
func NotInRepo() *OffshootError {
	return New(KindNotInRepo, "not inside a git or jj repository")
}

// SourceNotFound returns an error for a configured link/copy source that does not exist.
func SourceNotFound(path string) *OffshootError {
	return New(KindSourceNotFound, fmt.Sprintf("source not found: %s\n  Check if the file exists in the repository root.", path))
}

// SymlinkFailed wraps a symlink creation failure.
func SymlinkFailed(source, target string, cause error) *OffshootError {
	return Wrap(KindSymlinkFailed, fmt.Sprintf("failed to create symlink: %s -> %s", source, target), cause)
}

// CopyFailed wraps a copy failure.
func CopyFailed(source, target string, cause error) *OffshootError {
	return Wrap(KindCopyFailed, fmt.Sprintf("failed to copy: %s -> %s", source, target), cause)
}

// Aborted returns the user-cancellation error. It exits with status 0.
func Aborted() *OffshootError {
	return New(KindAborted, "operation aborted by user")
}

// NonInteractive returns an error for a prompt that cannot be shown.
func NonInteractive(hint string) *OffshootError {
	msg := "interactive prompt required but running in non-interactive mode"
	if hint != "" {
		msg += "\n  " + hint
	}
	return New(KindNonInteractive, msg)
}

// HooksNotTrusted returns an error for hooks that have not been approved.
func HooksNotTrusted() *OffshootError {
	return New(KindHooksNotTrusted, "hooks are not trusted")
}

// ConfigModifiedAfterTrust returns an error for a config that changed between trust checks.
func ConfigModifiedAfterTrust() *OffshootError {
	return New(KindConfigModifiedAfterTrust, "config file was modified after trust check")
}

// HookExecutionFailed wraps a failure to spawn a hook shell.
func HookExecutionFailed(command string, cause error) *OffshootError {
	return Wrap(KindHookExecutionFailed, fmt.Sprintf("failed to execute hook %q", command), cause)
}

// HookFailed returns an error for a hook that exited non-zero.
func HookFailed(command string, exitCode int) *OffshootError {
	e := New(KindHookFailed, fmt.Sprintf("hook %q failed with exit code %d", command, exitCode))
	e.HookExitCode = exitCode
	return e
}

// TrustFileCorrupted wraps a trust record that cannot be read or parsed.
func TrustFileCorrupted(path string, cause error) *OffshootError {
	return Wrap(KindTrustFileCorrupted, fmt.Sprintf("trust file corrupted: %s", path), cause)
}

// TrustFileSerialization wraps a trust record that cannot be written.
func TrustFileSerialization(cause error) *OffshootError {
	return Wrap(KindTrustFileSerialization, "failed to serialize trust file", cause)
}

// WorkspaceHasUncommittedChanges returns the remove safety-gate error.
func WorkspaceHasUncommittedChanges(path string) *OffshootError {
	return New(KindWorkspaceHasUncommittedChanges,
		fmt.Sprintf("workspace has uncommitted changes: %s\n  Use --force to remove anyway.", path))
}

// WorkspaceHasUnpushedCommits returns the remove safety-gate error.
func WorkspaceHasUnpushedCommits(path string, count int) *OffshootError {
	return New(KindWorkspaceHasUnpushedCommits,
		fmt.Sprintf("workspace has %d unpushed commit(s): %s\n  Use --force to remove anyway.", count, path))
}

// CannotRemoveMainWorkspace returns an error for an attempt to remove the main workspace.
func CannotRemoveMainWorkspace(path string) *OffshootError {
	return New(KindCannotRemoveMainWorkspace, fmt.Sprintf("cannot remove the main workspace: %s", path))
}

// WorkspaceNotFound returns an error for a path that is not a live workspace.
func WorkspaceNotFound(path string) *OffshootError {
	return New(KindWorkspaceNotFound, fmt.Sprintf("workspace not found: %s", path))
}

// VcsCommandFailed returns an error carrying a VCS command's stderr.
func VcsCommandFailed(command string, stderr string, cause error) *OffshootError {
	msg := fmt.Sprintf("%s failed", command)
	if stderr != "" {
		msg += ":\n" + stderr
	}
	e := Wrap(KindVcsCommandFailed, msg, cause)
	e.Stderr = stderr
	return e
}

// WindowsSymlinkPermission returns the Windows privilege error for symlinks.
func WindowsSymlinkPermission() *OffshootError {
	return New(KindWindowsSymlinkPermission,
		"failed to create symlink: permission denied\n  Enable Developer Mode in Windows Settings or run as administrator.")
}

// UnsupportedPlatform returns an error for a feature unavailable on this OS.
func UnsupportedPlatform(message string) *OffshootError {
	return New(KindUnsupportedPlatform, message)
}

// ConfigParse wraps a config decoding failure.
func ConfigParse(path string, cause error) *OffshootError {
	return Wrap(KindConfigParse, fmt.Sprintf("failed to parse config %s", path), cause)
}

// ConfigValidation returns an error listing every validation problem.
func ConfigValidation(message string) *OffshootError {
	return New(KindConfigValidation, "invalid config:\n"+message)
}

// ConfigNotFound returns an error for a repository without a config file.
func ConfigNotFound(root string) *OffshootError {
	return New(KindConfigNotFound, fmt.Sprintf("no config file found in %s", root))
}

// NoHooksDefined returns an error for a trust request on a config without hooks.
func NoHooksDefined() *OffshootError {
	return New(KindNoHooksDefined, "no hooks defined in config")
}

// PathRequired returns an error for an add without path or path template.
func PathRequired() *OffshootError {
	return New(KindPathRequired, "path is required: provide a path or set worktree.path_template")
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var oe *OffshootError
	if errors.As(err, &oe) {
		return oe.ExitCode()
	}
	return ExitGeneralError
}

// KindOf returns the Kind of the first OffshootError in err's chain.
func KindOf(err error) Kind {
	var oe *OffshootError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindUnknown
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
