// Package operation runs the add and remove workflows on top of the
// workspace provider, the setup engine, the trust store and the hook
// executor.
//
// Add order:
//
//	detect → load config → resolve path → validate branch → check sources
//	→ trust gate → recheck → pre_add → create → mkdir/link/copy → post_add
//
// Any failure after the workspace exists and before post_add removes it
// again with Provider.Remove(path, true), unless the path was already there
// before the add started. pre_* hook failures abort, post_* hook failures are
// printed as warnings.
//
// Remove resolves and checks every target before touching the first one.
// Without --force, uncommitted changes or unpushed commits need a
// confirmation, and fail outright when nobody can be asked.
//
// When Deps.Audit is set, completed adds and removes and failed post hooks
// are appended to the repository's activity log.
package operation
