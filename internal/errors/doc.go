// Package errors provides typed errors with exit codes for offshoot.
//
// # Error Types
//
// OffshootError is the base error type that wraps an error with a kind and
// an exit code:
//
//	type OffshootError struct {
//	    Kind    Kind   // Classification
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Kinds
//
// Every Kind is itself an error value, so callers match on kinds with the
// standard library:
//
//	if errors.Is(err, errors.KindHooksNotTrusted) { ... }
//
// # Exit Codes
//
//	ExitSuccess      = 0    // Success, or KindAborted (user cancelled)
//	ExitGeneralError = 1    // Any other error
//	ExitInterrupted  = 130  // Termination signal received
//
// # Error Constructors
//
// Use the provided constructors for consistent error creation:
//
//	errors.SourceNotFound(".env")
//	errors.HookFailed("make setup", 2)
//	errors.VcsCommandFailed("git worktree add", stderr, err)
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
