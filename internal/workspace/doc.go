// Package workspace provides a common interface over git worktrees and jj
// workspaces.
//
// # Detection
//
// DetectAt walks upward from a directory looking for .jj and .git markers:
//
//	kind, err := workspace.DetectAt(ctx, exec, "/src/project/sub")
//	// .jj only      -> workspace.Jj
//	// .git only     -> workspace.Git
//	// .jj and .git  -> workspace.JjColocated
//
// When no marker exists the VCS binaries are asked directly, and a
// directory outside any repository yields an errors.KindNotInRepo error.
//
// # Providers
//
// New returns the Provider for a kind:
//
//	p := workspace.New(kind, cwd, exec)
//	root, _ := p.RepositoryRoot(ctx)
//	err := p.Add(ctx, workspace.AddOptions{NewBranch: "feature"}, "../project-feature")
//	// git: git worktree add -b feature ../project-feature
//	// jj:  jj workspace add --name project-feature ../project-feature
//	//      jj bookmark create feature -r @
//
// For jj, RepositoryRoot is the default workspace root, even when called from
// a secondary workspace. Colocated repositories are always driven through jj.
//
// Remove is best-effort and only logs failures; it backs rollback. The
// user-facing removal path uses RemoveChecked.
package workspace
