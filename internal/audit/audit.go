// Package audit provides structured event logging for workspace and trust
// events. Events are stored as JSON Lines (JSONL), one file per repository.
package audit

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/offshoot-dev/offshoot/internal/config"
)

// EventType classifies an event.
type EventType string

const (
	EventAdd        EventType = "add"
	EventRemove     EventType = "remove"
	EventTrust      EventType = "trust"
	EventUntrust    EventType = "untrust"
	EventHookFailed EventType = "hook-failed"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	// Repo is the canonical main workspace path.
	Repo string `json:"repo"`
	// Path is the workspace the event concerns, when there is one.
	Path    string `json:"path,omitempty"`
	Details string `json:"details,omitempty"`
}

// Logger writes and reads audit events.
// Events are stored in {dir}/{first 16 hex chars of sha256(repo)}.jsonl.
type Logger struct {
	dir string
}

// DefaultDir returns <XDG_STATE_HOME>/offshoot/audit.
func DefaultDir() string {
	return filepath.Join(xdg.StateHome, config.AppName, "audit")
}

// NewLogger creates a new audit logger rooted at dir. An empty dir means
// DefaultDir.
func NewLogger(dir string) *Logger {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Logger{dir: dir}
}

// eventPath returns the path to the JSONL event log for a repository.
func (l *Logger) eventPath(repo string) string {
	sum := sha256.Sum256([]byte(repo))
	return filepath.Join(l.dir, hex.EncodeToString(sum[:8])+".jsonl")
}

// Log appends an event to the repository's audit log.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	path := l.eventPath(event.Repo)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// LogEvent is a convenience method that creates and logs an event.
func (l *Logger) LogEvent(eventType EventType, repo, path, details string) error {
	return l.Log(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Repo:      repo,
		Path:      path,
		Details:   details,
	})
}

// Events reads all events for a repository in chronological order.
func (l *Logger) Events(repo string) ([]Event, error) {
	path := l.eventPath(repo)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}

// Remove deletes the audit log for a repository.
func (l *Logger) Remove(repo string) error {
	path := l.eventPath(repo)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
