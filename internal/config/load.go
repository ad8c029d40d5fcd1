package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/logging"
)

// configFileNames are tried in order; YAML wins when both exist.
var configFileNames = []string{"config.yaml", "config.yml", "config.toml"}

// RepoConfigDir returns <root>/.offshoot.
func RepoConfigDir(root string) string {
	return filepath.Join(root, DirName)
}

// GlobalConfigDir returns <XDG_CONFIG_HOME>/offshoot.
func GlobalConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultFilePath is where a new config file in dir is written.
func DefaultFilePath(dir string) string {
	return filepath.Join(dir, configFileNames[0])
}

// FindFile returns the first config file present in dir.
func FindFile(dir string) (string, bool) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// Load reads and validates the repository config. A missing file yields an
// empty config.
func Load(root string) (*Config, error) {
	path, ok := FindFile(RepoConfigDir(root))
	if !ok {
		logging.Debug("no repository config", "root", root)
		return &Config{}, nil
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadGlobal reads the global config from dir. It returns nil when no file
// exists. Only options and worktree may be set globally.
func LoadGlobal(dir string) (*Config, error) {
	path, ok := FindFile(dir)
	if !ok {
		return nil, nil
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := validateGlobal(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadMerged loads the repository config and layers the global config from
// globalDir underneath it.
func LoadMerged(root, globalDir string) (*Config, error) {
	global, err := LoadGlobal(globalDir)
	if err != nil {
		return nil, err
	}
	repo, err := Load(root)
	if err != nil {
		return nil, err
	}
	return Merge(repo, global), nil
}

// LoadFile decodes a single config file, choosing the format by extension.
// Unknown keys are rejected in both formats.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = decodeTOML(data, &cfg)
	} else {
		err = decodeYAML(data, &cfg)
	}
	if err != nil {
		return nil, errors.ConfigParse(path, err)
	}

	logging.Debug("loaded config", "path", path, "hooks", cfg.Hooks.Count())
	return &cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown field(s): %s", strings.Join(keys, ", "))
	}
	return nil
}

func validateGlobal(cfg *Config) error {
	var problems []string
	if cfg.Hooks.HasHooks() {
		problems = append(problems, "hooks are not allowed in global config")
	}
	if len(cfg.Mkdir) > 0 {
		problems = append(problems, "mkdir entries are not allowed in global config")
	}
	if len(cfg.Link) > 0 {
		problems = append(problems, "link entries are not allowed in global config")
	}
	if len(cfg.Copy) > 0 {
		problems = append(problems, "copy entries are not allowed in global config")
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.ConfigValidation(formatProblems(problems))
}

func formatProblems(problems []string) string {
	lines := make([]string, len(problems))
	for i, p := range problems {
		lines[i] = "  - " + p
	}
	return strings.Join(lines, "\n")
}
