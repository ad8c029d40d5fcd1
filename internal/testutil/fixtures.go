package testutil

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/offshoot-dev/offshoot/internal/config"
)

//go:embed fixtures/*
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// LoadConfigFixture writes a fixture into a temporary directory and decodes
// it through the real loader, so the extension picks the format.
func LoadConfigFixture(dir, name string) (*config.Config, error) {
	data, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, err
	}
	return config.LoadFile(path)
}

// FullConfig returns the fixture that uses every repository config section.
func FullConfig(dir string) (*config.Config, error) {
	return LoadConfigFixture(dir, "full_config.yaml")
}

// InvalidConfig returns a fixture that decodes but fails validation.
func InvalidConfig(dir string) (*config.Config, error) {
	return LoadConfigFixture(dir, "invalid_config.yaml")
}

// GlobalConfig returns a global config fixture in TOML.
func GlobalConfig(dir string) (*config.Config, error) {
	return LoadConfigFixture(dir, "global_config.toml")
}
