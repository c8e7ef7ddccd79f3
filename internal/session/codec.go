package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/m0ric/replaykit/internal/filelock"
)

// ErrSessionNotFound indicates the session file does not exist.
var ErrSessionNotFound = errors.New("session file not found")

// Load reads a recording from disk and validates it.
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", path, err)
	}

	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", path, err)
	}

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session %s: %w", path, err)
	}

	return &rec, nil
}

// Save writes a recording to disk through a lock and an atomic rename.
// Metadata counts and the recording ID are filled in before writing, and
// the two-space indentation matches the files the original tool produced.
func Save(path string, rec *Recording) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Metadata.RecordingMode == "" {
		rec.Metadata.RecordingMode = RecordingModeRelative
	}
	rec.Metadata.MouseEventsCount = len(rec.MouseEvents)
	rec.Metadata.KeyboardEventsCount = len(rec.KeyboardEvents)

	if err := rec.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid session: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	return filelock.LockAndWrite(path, data)
}

// DefaultFilename returns the session filename for a recording started at t,
// in the same shape the original recorder used: replay_2025-01-02_15-04-05.json.
func DefaultFilename(t time.Time) string {
	return "replay_" + t.Format("2006-01-02_15-04-05") + ".json"
}
