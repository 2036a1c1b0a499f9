// Package history persists a per-session transcript of committed REPL
// submissions as JSONL, one entry per line.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Entry is one committed submission.
type Entry struct {
	SessionID string    `json:"session_id"`
	Input     string    `json:"input"`
	Value     string    `json:"value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Manager appends entries to a transcript file under a base directory.
type Manager struct {
	baseDir   string
	sessionID string
}

// NewManager creates the base directory if needed and starts a new session
// with a fresh ID. Earlier sessions' entries are kept; the ID tells them
// apart.
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &Manager{
		baseDir:   baseDir,
		sessionID: uuid.New().String(),
	}, nil
}

// SessionID returns the current session's identifier.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// Append records a committed submission and its displayed value.
func (m *Manager) Append(input, value string) error {
	entry := Entry{
		SessionID: m.sessionID,
		Input:     input,
		Value:     value,
		Timestamp: time.Now(),
	}

	path := filepath.Join(m.baseDir, "history.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}
	return nil
}

// All reads every transcript entry across sessions. Malformed lines are
// skipped.
func (m *Manager) All() ([]Entry, error) {
	path := filepath.Join(m.baseDir, "history.jsonl")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return entries, nil
}

// Recent returns the last n entries.
func (m *Manager) Recent(n int) ([]Entry, error) {
	entries, err := m.All()
	if err != nil {
		return nil, err
	}
	if len(entries) <= n {
		return entries, nil
	}
	return entries[len(entries)-n:], nil
}
