// Package watch notifies on changes to the session library directory.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change to a session file.
type Op int

const (
	// SessionAdded indicates a new session file appeared
	SessionAdded Op = iota
	// SessionChanged indicates a session file was rewritten
	SessionChanged
	// SessionRemoved indicates a session file was removed
	SessionRemoved
)

func (op Op) String() string {
	switch op {
	case SessionAdded:
		return "added"
	case SessionChanged:
		return "changed"
	case SessionRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one change to a session file in the library.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}

// DefaultDebounceDelay coalesces the rapid write bursts an atomic save
// produces into one event.
const DefaultDebounceDelay = 100 * time.Millisecond

// LibraryWatcher watches one library directory for session file changes.
type LibraryWatcher struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
	dir     string

	mu            sync.Mutex
	debounceDelay time.Duration
	debounceMap   map[string]*time.Timer
	closed        bool
}

// NewLibraryWatcher starts watching the library directory. The directory
// must exist.
func NewLibraryWatcher(dir string) (*LibraryWatcher, error) {
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, dir[1:])
	}
	dir = filepath.Clean(dir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	lw := &LibraryWatcher{
		watcher:       watcher,
		events:        make(chan Event, 100),
		errors:        make(chan error, 10),
		done:          make(chan struct{}),
		dir:           dir,
		debounceDelay: DefaultDebounceDelay,
		debounceMap:   make(map[string]*time.Timer),
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go lw.processEvents()

	return lw, nil
}

func (lw *LibraryWatcher) processEvents() {
	for {
		select {
		case <-lw.done:
			return
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			lw.handleEvent(event)
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			select {
			case lw.errors <- err:
			default:
				// Error channel full, drop the error
			}
		}
	}
}

func (lw *LibraryWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if !isSessionFile(path) {
		return
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = SessionAdded
	case event.Has(fsnotify.Write):
		op = SessionChanged
	case event.Has(fsnotify.Remove):
		op = SessionRemoved
	case event.Has(fsnotify.Rename):
		// A rename away from the library reads as a removal
		op = SessionRemoved
	default:
		// Ignore chmod events
		return
	}

	// Saves land as a temp-file rename followed by writes, so coalesce
	// everything but removals.
	if op == SessionRemoved {
		lw.sendEvent(path, op)
	} else {
		lw.debounce(path, op)
	}
}

// isSessionFile reports whether the path looks like a stored session. The
// atomic-save temp files get filtered out here.
func isSessionFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".tmp-") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".json")
}

func (lw *LibraryWatcher) debounce(path string, op Op) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if lw.closed {
		return
	}

	if timer, exists := lw.debounceMap[path]; exists {
		timer.Stop()
	}

	lw.debounceMap[path] = time.AfterFunc(lw.debounceDelay, func() {
		lw.mu.Lock()
		delete(lw.debounceMap, path)
		lw.mu.Unlock()

		lw.sendEvent(path, op)
	})
}

func (lw *LibraryWatcher) sendEvent(path string, op Op) {
	event := Event{
		Path:      path,
		Op:        op,
		Timestamp: time.Now(),
	}

	select {
	case lw.events <- event:
	case <-lw.done:
	default:
		// Events channel full, drop the event
	}
}

// Events returns the channel for receiving session file events.
func (lw *LibraryWatcher) Events() <-chan Event {
	return lw.events
}

// Errors returns the channel for receiving watcher errors.
func (lw *LibraryWatcher) Errors() <-chan error {
	return lw.errors
}

// Dir returns the watched library directory.
func (lw *LibraryWatcher) Dir() string {
	return lw.dir
}

// SetDebounceDelay adjusts the coalescing window. Call before events start
// flowing.
func (lw *LibraryWatcher) SetDebounceDelay(delay time.Duration) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.debounceDelay = delay
}

// Close stops the watcher. Safe to call more than once.
func (lw *LibraryWatcher) Close() error {
	lw.mu.Lock()
	if lw.closed {
		lw.mu.Unlock()
		return nil
	}
	lw.closed = true

	for _, timer := range lw.debounceMap {
		timer.Stop()
	}
	lw.debounceMap = nil
	lw.mu.Unlock()

	close(lw.done)

	return lw.watcher.Close()
}
