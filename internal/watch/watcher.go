// Package watch reports changes to a single file, coalescing bursts of
// filesystem events.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/daangn/permalink/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// ChangeType indicates what type of change occurred.
type ChangeType string

const (
	Created  ChangeType = "created"
	Modified ChangeType = "modified"
	Deleted  ChangeType = "deleted"
)

// Change is one debounced notification.
type Change struct {
	Type ChangeType `json:"type"`
	Path string     `json:"path"`
}

// Handler receives changes. It runs on a timer goroutine, one call at a time.
type Handler func(Change)

// DefaultDelay is how long the watcher waits for events to settle.
const DefaultDelay = 100 * time.Millisecond

// FileWatcher watches one file. The parent directory is watched so that
// editors replacing the file by rename are still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange Handler
	log      logger.Logger
	delay    time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending Change
	emitMu  sync.Mutex
	stopCh  chan struct{}
	stopped bool // Once stopped, cannot restart
	running bool
}

// New creates a watcher for path. Call Start to begin watching.
func New(path string, onChange Handler, log logger.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	return &FileWatcher{
		watcher:  watcher,
		path:     abs,
		onChange: onChange,
		log:      log,
		delay:    DefaultDelay,
		stopCh:   make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Start begins watching.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	if fw.stopped {
		fw.mu.Unlock()
		return fmt.Errorf("file watcher cannot be restarted after stop")
	}
	fw.running = true
	fw.mu.Unlock()

	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return fmt.Errorf("watching %s: %w", fw.path, err)
	}

	go fw.run()
	return nil
}

// Stop stops watching. A pending change is dropped.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.running = false
	fw.stopped = true
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
	fw.mu.Unlock()

	close(fw.stopCh)
	if fw.watcher == nil {
		return nil
	}
	return fw.watcher.Close()
}

func (fw *FileWatcher) run() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("file watcher error", logger.String("path", fw.path), logger.Error(err))

		case <-fw.stopCh:
			return
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != fw.path {
		return
	}
	changeType, ok := classify(event.Op)
	if !ok {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.stopped {
		return
	}

	// Debounce: the last event in a burst decides the change type.
	fw.pending = Change{Type: changeType, Path: fw.path}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.delay, fw.emit)
}

func (fw *FileWatcher) emit() {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return
	}
	change := fw.pending
	fw.timer = nil
	fw.mu.Unlock()

	fw.log.Debug("file changed", logger.String("path", change.Path), logger.String("type", string(change.Type)))

	fw.emitMu.Lock()
	defer fw.emitMu.Unlock()
	fw.onChange(change)
}

func classify(op fsnotify.Op) (ChangeType, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return Created, true
	case op&fsnotify.Write != 0:
		return Modified, true
	case op&fsnotify.Remove != 0:
		return Deleted, true
	case op&fsnotify.Rename != 0:
		return Deleted, true // Rename source is effectively deleted
	default:
		return "", false
	}
}
