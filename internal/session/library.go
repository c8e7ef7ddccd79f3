package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Summary is the library listing entry for one recording on disk.
type Summary struct {
	Name       string // File name without directory
	Path       string // Full path
	Events     int    // Total event count
	Duration   time.Duration
	RecordedAt time.Time
}

// Library is a directory of recorded sessions.
type Library struct {
	Dir string
}

// NewLibrary returns a Library rooted at dir.
func NewLibrary(dir string) *Library {
	return &Library{Dir: dir}
}

// List returns summaries for every session in the library, newest first.
// Files that fail to parse are skipped rather than failing the listing; a
// library with one corrupt file should still be browsable.
func (l *Library) List() ([]Summary, error) {
	entries, err := os.ReadDir(l.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read library %s: %w", l.Dir, err)
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(l.Dir, entry.Name())
		rec, err := Load(path)
		if err != nil {
			continue
		}

		recordedAt := rec.RecordedAt()
		if recordedAt.IsZero() {
			if info, err := entry.Info(); err == nil {
				recordedAt = info.ModTime()
			}
		}

		summaries = append(summaries, Summary{
			Name:       entry.Name(),
			Path:       path,
			Events:     rec.EventCount(),
			Duration:   rec.Duration(),
			RecordedAt: recordedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].RecordedAt.After(summaries[j].RecordedAt)
	})
	return summaries, nil
}

// Resolve turns a session reference into a path. References may be a path to
// a file, a library file name, or a bare name without the .json suffix.
func (l *Library) Resolve(ref string) (string, error) {
	candidates := []string{
		ref,
		filepath.Join(l.Dir, ref),
		filepath.Join(l.Dir, ref+".json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s (looked in %s)", ErrSessionNotFound, ref, l.Dir)
}

// Store saves a recording into the library under the given name and
// returns the full path. The .json extension is added when missing.
func (l *Library) Store(name string, rec *Recording) (string, error) {
	if !strings.EqualFold(filepath.Ext(name), ".json") {
		name += ".json"
	}
	path := filepath.Join(l.Dir, name)
	if err := Save(path, rec); err != nil {
		return "", err
	}
	return path, nil
}
