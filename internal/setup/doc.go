// Package setup applies mkdir, link and copy entries to a new workspace.
//
// Conflicts are handled in two steps so a caller can prompt in between:
//
//	if setup.CheckConflict(target) {
//	    action, err := setup.ResolveConflict(target, mode)
//	    // Proceed: target is free, Skip: leave it, Abort: stop setup
//	}
//	err := setup.CopyFile(source, target)
//
// Every primitive creates missing parent directories first.
package setup
