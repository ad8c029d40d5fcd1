// Package output provides the Printer used for all user-facing messages.
//
// A Printer is created once per command and passed to everything that
// talks to the user, so colour and quiet settings are never global:
//
//	p := output.New(os.Stdout, os.Stderr, output.WithQuiet(quiet),
//	    output.WithColor(output.ColorEnabled(os.Stdout, noColor)))
//	p.Success("Worktree created: %s", path)
//	p.Warn("post_add hook failed")
//
// Diagnostic logging stays in package logging.
package output
