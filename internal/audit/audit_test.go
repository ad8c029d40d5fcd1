package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLogger_LogAndEvents(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(dir)

	now := time.Now().Truncate(time.Millisecond)

	events := []Event{
		{Timestamp: now, Type: EventTrust, Repo: "/repo", Details: "hooks=2"},
		{Timestamp: now.Add(time.Second), Type: EventAdd, Repo: "/repo", Path: "/wt", Details: "branch=feat"},
		{Timestamp: now.Add(2 * time.Second), Type: EventHookFailed, Repo: "/repo", Path: "/wt", Details: "post_add"},
		{Timestamp: now.Add(3 * time.Second), Type: EventRemove, Repo: "/repo", Path: "/wt"},
	}

	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	result, err := logger.Events("/repo")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}

	if len(result) != len(events) {
		t.Fatalf("got %d events, want %d", len(result), len(events))
	}

	for i, e := range result {
		if e.Type != events[i].Type {
			t.Errorf("event %d: type = %q, want %q", i, e.Type, events[i].Type)
		}
		if e.Path != events[i].Path {
			t.Errorf("event %d: path = %q, want %q", i, e.Path, events[i].Path)
		}
		if e.Details != events[i].Details {
			t.Errorf("event %d: details = %q, want %q", i, e.Details, events[i].Details)
		}
	}
}

func TestLogger_SeparatesRepositories(t *testing.T) {
	logger := NewLogger(t.TempDir())

	logger.LogEvent(EventAdd, "/a", "/a-wt", "")
	logger.LogEvent(EventAdd, "/b", "/b-wt", "")
	logger.LogEvent(EventRemove, "/b", "/b-wt", "")

	a, _ := logger.Events("/a")
	b, _ := logger.Events("/b")
	if len(a) != 1 || len(b) != 2 {
		t.Errorf("got %d and %d events, want 1 and 2", len(a), len(b))
	}
}

func TestLogger_EventsEmpty(t *testing.T) {
	logger := NewLogger(t.TempDir())

	result, err := logger.Events("/nonexistent")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}

	if len(result) != 0 {
		t.Errorf("got %d events, want 0", len(result))
	}
}

func TestLogger_LogEvent(t *testing.T) {
	logger := NewLogger(t.TempDir())

	if err := logger.LogEvent(EventUntrust, "/repo", "", "hooks=1"); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	events, err := logger.Events("/repo")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	e := events[0]
	if e.Type != EventUntrust {
		t.Errorf("type = %q, want %q", e.Type, EventUntrust)
	}
	if e.Repo != "/repo" {
		t.Errorf("repo = %q, want %q", e.Repo, "/repo")
	}
	if e.Timestamp.IsZero() {
		t.Error("timestamp should be set automatically")
	}
}

func TestLogger_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(dir)

	logger.LogEvent(EventAdd, "/repo", "/wt", "")
	f, err := os.OpenFile(logger.eventPath("/repo"), os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{not json\n\n")
	f.Close()
	logger.LogEvent(EventRemove, "/repo", "/wt", "")

	events, err := logger.Events("/repo")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
	if filepath.Dir(logger.eventPath("/repo")) != dir {
		t.Error("event log should live in the logger directory")
	}
}

func TestLogger_Remove(t *testing.T) {
	logger := NewLogger(t.TempDir())

	logger.LogEvent(EventAdd, "/removable", "", "")

	if err := logger.Remove("/removable"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	events, err := logger.Events("/removable")
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events after remove, want 0", len(events))
	}

	// Should not error
	if err := logger.Remove("/removable"); err != nil {
		t.Errorf("Remove should not error for nonexistent: %v", err)
	}
}
