package trust

import (
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/logging"
)

const recordExt = ".yaml"

// Record is the persisted approval of one hook set for one repository.
type Record struct {
	RepoRoot  string       `yaml:"repo_root"`
	TrustedAt string       `yaml:"trusted_at"`
	Hooks     config.Hooks `yaml:"hooks"`
}

// Entry is a record found on disk. Err is set when the file could not be
// read or parsed.
type Entry struct {
	Hash   string
	Path   string
	Record Record
	Err    error
}

// Store keeps trust records as <dir>/<sha256>.yaml.
type Store struct {
	dir string
	now func() time.Time
}

// DefaultDir returns <XDG_DATA_HOME>/offshoot/trusted.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, config.AppName, "trusted")
}

// NewStore returns a store rooted at dir. An empty dir means DefaultDir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the directory holding the records.
func (s *Store) Dir() string {
	return s.dir
}

// Hash returns the hex SHA-256 identifying hooks for a canonical root. The
// input is the root line, then each phase label in fixed order followed by
// its command and description lines. Every value is written Go-quoted, so a
// newline inside a command or description cannot pass for a field boundary.
func Hash(root string, hooks config.Hooks) string {
	h := sha256.New()
	fmt.Fprintf(h, "repo_root:%s\n", strconv.Quote(root))
	for _, phase := range hooks.Phases() {
		fmt.Fprintf(h, "[%s]\n", phase.Name)
		for _, e := range phase.Entries {
			fmt.Fprintf(h, "command:%s\ndescription:%s\n", strconv.Quote(e.Command), strconv.Quote(e.Description))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Canonicalize resolves root to the absolute, symlink-free form used in
// hashes and records.
func Canonicalize(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository root %s: %w", root, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize repository root %s: %w", root, err)
	}
	return canonical, nil
}

func (s *Store) recordPath(hash string) string {
	return filepath.Join(s.dir, hash+recordExt)
}

// IsTrusted reports whether hooks were approved for root. Empty hooks are
// always trusted. A record whose stored root or hook snapshot differs is not
// a match.
func (s *Store) IsTrusted(root string, hooks config.Hooks) (bool, error) {
	if !hooks.HasHooks() {
		return true, nil
	}

	canonical, err := Canonicalize(root)
	if err != nil {
		return false, err
	}

	path := s.recordPath(Hash(canonical, hooks))
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.TrustFileCorrupted(path, err)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return false, errors.TrustFileCorrupted(path, err)
	}
	if rec.RepoRoot != canonical {
		logging.Debug("trust record root mismatch", "path", path, "stored", rec.RepoRoot, "root", canonical)
		return false, nil
	}
	if !rec.Hooks.Equal(hooks) {
		logging.Debug("trust record hooks mismatch", "path", path)
		return false, nil
	}
	return true, nil
}

// Trust records approval of hooks for root. Older records for the same root
// are removed so that reverting the config to a previous hook set needs a
// fresh review.
func (s *Store) Trust(root string, hooks config.Hooks) error {
	if !hooks.HasHooks() {
		return nil
	}

	canonical, err := Canonicalize(root)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create trust directory: %w", err)
	}

	hash := Hash(canonical, hooks)
	for _, e := range s.List() {
		if e.Err == nil && e.Record.RepoRoot == canonical && e.Hash != hash {
			if err := os.Remove(e.Path); err != nil {
				logging.Warn("failed to remove old trust record", "path", e.Path, "error", err)
			}
		}
	}

	rec := Record{
		RepoRoot:  canonical,
		TrustedAt: s.now().UTC().Format(time.RFC3339),
		Hooks:     hooks,
	}
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return errors.TrustFileSerialization(err)
	}

	path := s.recordPath(hash)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.TrustFileSerialization(err)
	}
	logging.Debug("trusted hooks", "root", canonical, "path", path)
	return nil
}

// Untrust removes the record for hooks and root, reporting whether one existed.
func (s *Store) Untrust(root string, hooks config.Hooks) (bool, error) {
	if !hooks.HasHooks() {
		return false, nil
	}

	canonical, err := Canonicalize(root)
	if err != nil {
		return false, err
	}

	err = os.Remove(s.recordPath(Hash(canonical, hooks)))
	if stderrors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove trust record: %w", err)
	}
	return true, nil
}

// List returns every record in the store sorted by repository root.
// Unreadable records are included with Err set.
func (s *Store) List() []Entry {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), recordExt) {
			continue
		}

		e := Entry{
			Hash: strings.TrimSuffix(f.Name(), recordExt),
			Path: filepath.Join(s.dir, f.Name()),
		}
		data, err := os.ReadFile(e.Path)
		if err == nil {
			err = yaml.Unmarshal(data, &e.Record)
		}
		if err != nil {
			e.Err = errors.TrustFileCorrupted(e.Path, err)
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Record.RepoRoot < entries[j].Record.RepoRoot
	})
	return entries
}
