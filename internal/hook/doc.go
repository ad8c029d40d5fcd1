// Package hook expands and runs the shell commands configured for the
// pre_add, post_add, pre_remove and post_remove phases.
//
// Template values are always single-quoted, so a branch named
// "x'; rm -rf ~" cannot break out of its argument:
//
//	hook.Expand("echo {{branch}}", hook.Env{Branch: "it's"})
//	// echo 'it'\''s'
//
// Commands run with sh -c. Windows is not supported.
package hook
