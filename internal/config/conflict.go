package config

import (
	"fmt"
	"strings"
)

// ConflictMode is the policy for a link or copy whose target already exists.
type ConflictMode int

const (
	Abort ConflictMode = iota
	Skip
	Overwrite
	Backup
)

var conflictModeNames = []string{"abort", "skip", "overwrite", "backup"}

// ConflictModes returns every mode in prompt order.
func ConflictModes() []ConflictMode {
	return []ConflictMode{Abort, Skip, Overwrite, Backup}
}

func (m ConflictMode) String() string {
	if int(m) >= 0 && int(m) < len(conflictModeNames) {
		return conflictModeNames[m]
	}
	return fmt.Sprintf("ConflictMode(%d)", int(m))
}

// Describe returns the one-line help shown in prompts and flag usage.
func (m ConflictMode) Describe() string {
	switch m {
	case Abort:
		return "stop setup and roll back"
	case Skip:
		return "keep the existing file"
	case Overwrite:
		return "replace the existing file"
	case Backup:
		return "rename the existing file to *.bak"
	}
	return ""
}

// ParseConflictMode parses a mode name, case-insensitively.
func ParseConflictMode(s string) (ConflictMode, error) {
	for i, name := range conflictModeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return ConflictMode(i), nil
		}
	}
	return 0, fmt.Errorf("invalid conflict mode %q: must be one of %s", s, strings.Join(conflictModeNames, ", "))
}

func (m ConflictMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText lets both yaml.v3 and BurntSushi/toml decode mode names.
func (m *ConflictMode) UnmarshalText(text []byte) error {
	mode, err := ParseConflictMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Set and Type make ConflictMode usable as a pflag.Value.
func (m *ConflictMode) Set(s string) error {
	return m.UnmarshalText([]byte(s))
}

func (m *ConflictMode) Type() string {
	return "mode"
}

// ResolveMode applies mode precedence: invocation override, then entry, then
// the configured default. It returns false when the user must be asked.
func ResolveMode(override, entry, fallback *ConflictMode) (ConflictMode, bool) {
	for _, m := range []*ConflictMode{override, entry, fallback} {
		if m != nil {
			return *m, true
		}
	}
	return 0, false
}
