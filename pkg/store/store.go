// Package store persists conversation history as JSON under the user's home
// directory so a restarted assistant picks up where it left off.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"clippy/pkg/ai"
)

const historyFile = "history.json"

// historyDocument is the on-disk shape.
type historyDocument struct {
	SessionID string       `json:"session_id"`
	UpdatedAt time.Time    `json:"updated_at"`
	Messages  []ai.Message `json:"messages"`
}

// History is a durable conversation transcript. Every append rewrites the
// backing file so a crash loses at most the in-flight message.
type History struct {
	mu   sync.Mutex
	path string
	doc  historyDocument
}

// Open loads the history at path, creating an empty one with a fresh session
// id when the file does not exist.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	h := &History{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		h.doc = historyDocument{SessionID: uuid.NewString()}
		return h, nil
	}

	if err := json.Unmarshal(data, &h.doc); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	if h.doc.SessionID == "" {
		h.doc.SessionID = uuid.NewString()
	}
	return h, nil
}

// DefaultPath returns the history file location under the home directory.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".clippy", historyFile)
	}
	return filepath.Join(homeDir, ".clippy", historyFile)
}

// SessionID returns the identifier of the stored conversation.
func (h *History) SessionID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.doc.SessionID
}

// Append records a message and persists the transcript.
func (h *History) Append(role, content string) (ai.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := ai.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	h.doc.Messages = append(h.doc.Messages, msg)
	h.doc.UpdatedAt = msg.Timestamp

	if err := h.flushLocked(); err != nil {
		return ai.Message{}, err
	}
	return msg, nil
}

// Messages returns a copy of the transcript in order.
func (h *History) Messages() []ai.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ai.Message(nil), h.doc.Messages...)
}

// Clear drops the transcript and starts a new session.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.doc = historyDocument{
		SessionID: uuid.NewString(),
		UpdatedAt: time.Now(),
	}
	return h.flushLocked()
}

func (h *History) flushLocked() error {
	data, err := json.MarshalIndent(h.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(h.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
