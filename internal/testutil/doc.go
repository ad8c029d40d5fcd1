// Package testutil provides test fixtures and repository environments.
//
// # Fixtures
//
// Config fixtures are embedded using go:embed:
//
//	fixtures/full_config.yaml
//	fixtures/invalid_config.yaml
//	fixtures/global_config.toml
//
// They are decoded through config.LoadFile so the format follows the
// extension:
//
//	cfg, err := testutil.FullConfig(t.TempDir())
//
// # Environments
//
// NewTestEnv creates a repository directory, an empty trust store and a
// global config directory under t.TempDir, plus a MockExecutor and a
// Printer writing to buffers:
//
//	env := testutil.NewTestEnv(t)
//	env.WriteConfig("hooks:\n  post_add:\n    - command: make\n")
//	env.TrustConfig()
//
// InitGitRepo and InitJJRepo create real repositories and skip the test when
// the binary is missing.
package testutil
