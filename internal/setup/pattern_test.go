package setup

import (
	"path/filepath"
	"reflect"
	"testing"
)

func patternTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{
		"Makefile",
		"config/app.local",
		"config/app.yml",
		"secrets/a.env",
		"secrets/b.env",
		"secrets/nested/c.env",
		".git/secret.env",
		".jj/repo/store.env",
	} {
		write(t, filepath.Join(root, filepath.FromSlash(rel)), rel)
	}
	return root
}

func TestMatchPattern(t *testing.T) {
	root := patternTree(t)

	tests := []struct {
		name    string
		pattern string
		skip    func(string) bool
		want    []string
	}{
		{"single level", "secrets/*.env", nil, []string{"secrets/a.env", "secrets/b.env"}},
		{"any depth", "secrets/**.env", nil, []string{"secrets/a.env", "secrets/b.env", "secrets/nested/c.env"}},
		{"directories matched whole", "*", nil, []string{"Makefile", "config", "secrets"}},
		{"question mark", "config/app.???", nil, []string{"config/app.yml"}},
		{"character class", "secrets/[ab].env", nil, []string{"secrets/a.env", "secrets/b.env"}},
		{"vcs directories ignored", "**.env", nil, []string{"secrets/a.env", "secrets/b.env", "secrets/nested/c.env"}},
		{"no match", "*.missing", nil, nil},
		{
			name:    "skipped paths",
			pattern: "secrets/*.env",
			skip:    func(rel string) bool { return rel == "secrets/a.env" },
			want:    []string{"secrets/b.env"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchPattern(root, tt.pattern, tt.skip)
			if err != nil {
				t.Fatalf("MatchPattern error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MatchPattern(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestMatchPattern_InvalidPattern(t *testing.T) {
	if _, err := MatchPattern(t.TempDir(), "secrets/[abc", nil); err == nil {
		t.Error("expected an error for an unterminated character class")
	}
}
