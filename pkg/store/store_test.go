package store

import (
	"os"
	"path/filepath"
	"testing"

	"clippy/pkg/ai"
)

func TestOpen_CreatesEmptyHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".clippy", "history.json")

	h, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if h.SessionID() == "" {
		t.Error("Expected a session id for a fresh history")
	}
	if len(h.Messages()) != 0 {
		t.Errorf("Expected empty transcript, got %d messages", len(h.Messages()))
	}
}

func TestAppend_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	h, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if _, err := h.Append(ai.RoleUser, "hello"); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if _, err := h.Append(ai.RoleAssistant, "hi there"); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	sessionID := h.SessionID()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}

	msgs := reopened.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages after reopen, got %d", len(msgs))
	}
	if msgs[0].Role != ai.RoleUser || msgs[0].Content != "hello" {
		t.Errorf("Unexpected first message %+v", msgs[0])
	}
	if msgs[1].Role != ai.RoleAssistant || msgs[1].Content != "hi there" {
		t.Errorf("Unexpected second message %+v", msgs[1])
	}
	if msgs[0].Timestamp.IsZero() {
		t.Error("Expected timestamps to be recorded")
	}
	if reopened.SessionID() != sessionID {
		t.Errorf("Session id changed across reopen: %q vs %q", reopened.SessionID(), sessionID)
	}
}

func TestClear_StartsNewSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	h, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := h.Append(ai.RoleUser, "to be forgotten"); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	oldSession := h.SessionID()

	if err := h.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	if len(h.Messages()) != 0 {
		t.Error("Expected empty transcript after Clear")
	}
	if h.SessionID() == oldSession {
		t.Error("Expected a new session id after Clear")
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if len(reopened.Messages()) != 0 {
		t.Error("Clear should persist the empty transcript")
	}
}

func TestOpen_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{broken"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Error("Expected error for corrupted history file")
	}
}

func TestOpen_BackfillsMissingSessionID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	raw := `{"messages":[{"role":"user","content":"hi","timestamp":"2025-01-01T00:00:00Z"}]}`
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	h, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if h.SessionID() == "" {
		t.Error("Expected a generated session id for legacy files")
	}
	if len(h.Messages()) != 1 {
		t.Errorf("Expected preserved messages, got %d", len(h.Messages()))
	}
}
