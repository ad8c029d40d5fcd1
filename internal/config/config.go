package config

import (
	"strings"
)

const (
	// DirName is the per-repository config directory.
	DirName = ".offshoot"
	// AppName names the global config and data directories.
	AppName = "offshoot"
)

// Config is the merged offshoot configuration for one repository.
type Config struct {
	Options  Options  `yaml:"options" toml:"options"`
	Worktree Worktree `yaml:"worktree" toml:"worktree"`
	Mkdir    []Mkdir  `yaml:"mkdir" toml:"mkdir" validate:"dive"`
	Link     []Link   `yaml:"link" toml:"link" validate:"dive"`
	Copy     []Copy   `yaml:"copy" toml:"copy" validate:"dive"`
	Hooks    Hooks    `yaml:"hooks" toml:"hooks"`
}

// Options holds settings that may also come from the global config.
type Options struct {
	// OnConflict is the default policy for link and copy entries.
	OnConflict *ConflictMode `yaml:"on_conflict" toml:"on_conflict"`
}

// Worktree controls where new workspaces go when no path is given.
type Worktree struct {
	// PathTemplate supports {{branch}} and {{repository}}.
	PathTemplate string `yaml:"path_template" toml:"path_template"`
}

// Mkdir creates an empty directory in the new workspace.
type Mkdir struct {
	Path        string `yaml:"path" toml:"path" validate:"required,relpath"`
	Description string `yaml:"description" toml:"description"`
}

// Link symlinks a file from the repository root into the new workspace.
// A Source containing *, ? or [ is a pattern matched against every path
// under the root; each match is linked at the same relative path.
type Link struct {
	Source      string        `yaml:"source" toml:"source" validate:"required,relpath,pattern"`
	Target      string        `yaml:"target" toml:"target" validate:"omitempty,relpath"`
	OnConflict  *ConflictMode `yaml:"on_conflict" toml:"on_conflict"`
	Description string        `yaml:"description" toml:"description"`
	// IgnoreTracked drops pattern matches that are under version control.
	IgnoreTracked bool `yaml:"ignore_tracked" toml:"ignore_tracked"`
}

// IsPattern reports whether Source is a glob pattern.
func (l Link) IsPattern() bool {
	return IsPattern(l.Source)
}

// IsPattern reports whether path contains glob metacharacters.
func IsPattern(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

// TargetPath returns the workspace-relative target, defaulting to the source.
func (l Link) TargetPath() string {
	if l.Target == "" {
		return l.Source
	}
	return l.Target
}

// Copy copies a file or directory from the repository root into the new workspace.
type Copy struct {
	Source      string        `yaml:"source" toml:"source" validate:"required,relpath"`
	Target      string        `yaml:"target" toml:"target" validate:"omitempty,relpath"`
	OnConflict  *ConflictMode `yaml:"on_conflict" toml:"on_conflict"`
	Description string        `yaml:"description" toml:"description"`
}

// TargetPath returns the workspace-relative target, defaulting to the source.
func (c Copy) TargetPath() string {
	if c.Target == "" {
		return c.Source
	}
	return c.Target
}

// HookEntry is one shell command run at a hook phase.
type HookEntry struct {
	Command     string `yaml:"command" toml:"command" validate:"required,shellcmd"`
	Description string `yaml:"description,omitempty" toml:"description"`
}

// Hooks groups hook commands by phase.
type Hooks struct {
	PreAdd     []HookEntry `yaml:"pre_add,omitempty" toml:"pre_add" validate:"dive"`
	PostAdd    []HookEntry `yaml:"post_add,omitempty" toml:"post_add" validate:"dive"`
	PreRemove  []HookEntry `yaml:"pre_remove,omitempty" toml:"pre_remove" validate:"dive"`
	PostRemove []HookEntry `yaml:"post_remove,omitempty" toml:"post_remove" validate:"dive"`
}

// Phase names in execution and hashing order.
const (
	PhasePreAdd     = "pre_add"
	PhasePostAdd    = "post_add"
	PhasePreRemove  = "pre_remove"
	PhasePostRemove = "post_remove"
)

// Phase is a named hook list.
type Phase struct {
	Name    string
	Entries []HookEntry
}

// Phases returns every phase, empty or not, in fixed order.
func (h Hooks) Phases() []Phase {
	return []Phase{
		{PhasePreAdd, h.PreAdd},
		{PhasePostAdd, h.PostAdd},
		{PhasePreRemove, h.PreRemove},
		{PhasePostRemove, h.PostRemove},
	}
}

// HasHooks reports whether any phase has a command.
func (h Hooks) HasHooks() bool {
	return len(h.PreAdd)+len(h.PostAdd)+len(h.PreRemove)+len(h.PostRemove) > 0
}

// Count returns the total number of hook commands.
func (h Hooks) Count() int {
	return len(h.PreAdd) + len(h.PostAdd) + len(h.PreRemove) + len(h.PostRemove)
}

// Equal reports whether both hook sets hold the same commands in the same order.
func (h Hooks) Equal(other Hooks) bool {
	a, b := h.Phases(), other.Phases()
	for i := range a {
		if len(a[i].Entries) != len(b[i].Entries) {
			return false
		}
		for j := range a[i].Entries {
			if a[i].Entries[j] != b[i].Entries[j] {
				return false
			}
		}
	}
	return true
}

// Merge fills options the repository config leaves unset from the global
// config. The repository config wins everywhere else.
func Merge(repo, global *Config) *Config {
	merged := &Config{}
	if repo != nil {
		*merged = *repo
	}
	if global == nil {
		return merged
	}
	if merged.Options.OnConflict == nil {
		merged.Options.OnConflict = global.Options.OnConflict
	}
	if merged.Worktree.PathTemplate == "" {
		merged.Worktree.PathTemplate = global.Worktree.PathTemplate
	}
	return merged
}

// GeneratePath expands the path template for a branch. A template without
// variables has the branch appended. It returns false when no template is set.
func (w Worktree) GeneratePath(branch, repository string) (string, bool) {
	if w.PathTemplate == "" {
		return "", false
	}
	expanded := expandPathTemplate(w.PathTemplate, branch, repository)
	if expanded == w.PathTemplate {
		return w.PathTemplate + branch, true
	}
	return expanded, true
}

// expandPathTemplate replaces {{branch}} and {{repository}}. Unknown or
// unclosed placeholders are kept verbatim.
func expandPathTemplate(template, branch, repository string) string {
	var b strings.Builder
	rest := template
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:start])

		end := strings.Index(rest[start+2:], "}}")
		if end < 0 {
			b.WriteString(rest[start:])
			return b.String()
		}

		name := rest[start+2 : start+2+end]
		switch strings.TrimSpace(name) {
		case "branch":
			b.WriteString(branch)
		case "repository":
			b.WriteString(repository)
		default:
			b.WriteString("{{" + name + "}}")
		}
		rest = rest[start+2+end+2:]
	}
}
