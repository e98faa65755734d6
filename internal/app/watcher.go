package app

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"image-labeler/internal/logging"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to a single file. The parent directory is watched
// so that files replaced by rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *zap.Logger

	mu       sync.Mutex
	onChange func(path string)
	timer    *time.Timer

	stopCh chan struct{}
	done   chan struct{}
}

// NewWatcher creates a watcher for path. Call Start to begin delivering
// callbacks.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		watcher:  fw,
		logger:   logging.Named("watcher"),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// OnChange sets the callback. It runs on the watcher's goroutine; use
// appropriate synchronization if updating UI.
func (w *Watcher) OnChange(callback func(path string)) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop ends the watch and waits for the goroutine to exit.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	err := w.watcher.Close()
	<-w.done

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.String("path", w.path), zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.stopCh:
		return
	default:
	}
	w.mu.Lock()
	cb := w.onChange
	w.mu.Unlock()
	w.logger.Debug("file changed", zap.String("path", w.path))
	if cb != nil {
		cb(w.path)
	}
}

// WatchProject reloads the state's project whenever its file changes on disk
// and there are no unsaved edits. The file is read on the watcher goroutine
// and the result is applied through the state's dispatcher. The returned
// watcher is already started.
func WatchProject(s *State, path string) (*Watcher, error) {
	w, err := NewWatcher(path, DefaultDebounce)
	if err != nil {
		return nil, err
	}
	w.OnChange(func(string) {
		r, err := s.prepareReload()
		switch {
		case err != nil:
			w.logger.Warn("project reload failed", zap.Error(err))
			return
		case r == nil:
			w.logger.Debug("project reload skipped", zap.String("path", path))
			return
		}
		s.Dispatch(func() {
			if s.applyReload(r) {
				w.logger.Info("project reloaded", zap.String("path", path))
			} else {
				w.logger.Info("project edited during reload, keeping unsaved edits", zap.String("path", path))
			}
		})
	})
	w.Start()
	return w, nil
}
