// Package logging provides structured diagnostic logging for offshoot.
//
// Diagnostics are written with slog to stderr and controlled by the
// --verbose and --json flags:
//
//	logging.Debug("running git", "args", args, "dir", dir)
//	logging.Warn("rollback failed", "path", path, "error", err)
//
// Without --verbose only warnings and errors are shown. User-facing
// messages (status lines, prompts, tables) are not diagnostics and go
// through the output package instead.
package logging
