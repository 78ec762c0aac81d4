package connectivity

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// SourceMarker is the monitor source updated by MarkerWatcher.
const SourceMarker = "marker"

// MarkerWatcher forces offline mode while a marker file exists.
// The directory of the marker is watched with fsnotify so the host can toggle
// connectivity by creating or removing the file.
type MarkerWatcher struct {
	watcher *fsnotify.Watcher
	monitor *Monitor
	logger  *slog.Logger
	done    chan struct{}
	path    string
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewMarkerWatcher creates a watcher for the marker file at path.
// It must be started with Start() before it will update the monitor.
func NewMarkerWatcher(path string, monitor *Monitor, logger *slog.Logger) (*MarkerWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to resolve marker path: %w", err)
	}

	return &MarkerWatcher{
		watcher: watcher,
		monitor: monitor,
		logger:  logger,
		done:    make(chan struct{}),
		path:    abs,
	}, nil
}

// Start applies the current marker state and begins watching its directory.
func (mw *MarkerWatcher) Start() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	if mw.running {
		return fmt.Errorf("marker watcher already running")
	}

	dir := filepath.Dir(mw.path)
	if err := mw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	mw.apply()

	mw.running = true
	mw.wg.Add(1)
	go mw.processEvents()

	return nil
}

// Stop stops watching and blocks until the event goroutine has exited.
func (mw *MarkerWatcher) Stop() error {
	mw.mu.Lock()
	if !mw.running {
		mw.mu.Unlock()
		return nil
	}
	mw.running = false
	mw.mu.Unlock()

	close(mw.done)

	if err := mw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	mw.wg.Wait()
	return nil
}

func (mw *MarkerWatcher) processEvents() {
	defer mw.wg.Done()

	for {
		select {
		case <-mw.done:
			return

		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != mw.path {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				mw.apply()
			}

		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			mw.logger.Warn("Marker watcher error", "error", err)
		}
	}
}

// apply выставляет состояние по наличию файла-маркера
func (mw *MarkerWatcher) apply() {
	_, err := os.Stat(mw.path)
	switch {
	case err == nil:
		mw.monitor.Report(SourceMarker, false)
	case errors.Is(err, fs.ErrNotExist):
		mw.monitor.Report(SourceMarker, true)
	default:
		mw.logger.Warn("Failed to stat offline marker", "path", mw.path, "error", err)
	}
}
