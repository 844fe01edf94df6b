// Package watcher monitors the scan root and queues a batch merge when new
// disc image files settle.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceSecs = 10

// Watcher monitors the root path for new CUE/BIN files and triggers a batch
// run once the filesystem goes quiet.
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchPath     string
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	running       bool
	stopChan      chan struct{}
	trigger       func(root string)
}

// NewWatcher creates a new file system watcher. trigger is called with the
// watched root after each debounced burst of new files.
func NewWatcher(trigger func(root string)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  watcher,
		trigger:  trigger,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching the root path and its subdirectories.
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.watchPath = watchPath
	slog.Info("Starting file watcher", "path", watchPath)

	// fsnotify watches are not recursive; register the existing subtree.
	err := filepath.WalkDir(watchPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
	if err != nil {
		return err
	}

	w.running = true
	go w.watchLoop(ctx)

	slog.Info("File watcher started successfully")
	return nil
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping file watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// watchLoop processes file system events.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != fsnotify.Create {
		return
	}

	// New directories join the watch so nested dumps are picked up too.
	if w.addIfDirectory(event.Name) {
		return
	}

	if !isDiscImageFile(event.Name) {
		return
	}

	slog.Info("Detected new disc image file", "file", event.Name)

	// Start or reset the debounce timer; a dump being copied in produces a
	// burst of events and we only want one batch run at the end.
	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(debounceSecs*time.Second, func() {
		slog.Info("Filesystem settled, triggering batch run", "path", w.watchPath)
		w.trigger(w.watchPath)
	})
}

// addIfDirectory registers newly created directories and reports whether the
// path was one. Directory names may contain dots, so this stats the path
// rather than guessing from an extension.
func (w *Watcher) addIfDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if err := w.watcher.Add(path); err != nil {
		slog.Warn("Failed to watch new directory", "path", path, "error", err)
	}
	return true
}

// isDiscImageFile checks whether the file is part of a BIN/CUE dump.
func isDiscImageFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	return ext == ".cue" || ext == ".bin"
}
