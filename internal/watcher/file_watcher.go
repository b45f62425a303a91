package watcher

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// ErrNothingToWatch indicates that neither a data directory nor its parent exists.
var ErrNothingToWatch = errors.New("no watchable directory")

// Options configures a file watcher.
type Options struct {
	// Dirs are the data directories. Each is watched non-recursively; its
	// parent is watched too so that creating or removing the directory is seen.
	Dirs []string

	// Match selects data files by base name. Nil matches every file.
	Match func(name string) bool

	// Ignore lists paths whose events are dropped (the manifest itself).
	Ignore []string

	// Debounce is the quiet period before firing the callback.
	Debounce time.Duration
}

// fileWatcher implements FileWatcher interface.
type fileWatcher struct {
	watcher       *fsnotify.Watcher
	dirs          map[string]bool      // Data directories
	match         func(string) bool    // Base name filter
	ignore        map[string]bool      // Paths never reported
	debounceTime  time.Duration        // Quiet period before firing callback
	callback      func(paths []string) // Callback to invoke with changed paths
	ctx           context.Context      // Context for lifecycle management
	cancel        context.CancelFunc   // Cancel function for internal context
	accumulated   map[string]bool      // Accumulated changes
	accumulatedMu sync.Mutex           // Protects accumulated map
	debounceTimer *time.Timer          // Current debounce timer
	timerMu       sync.Mutex           // Protects debounce timer
	stopOnce      sync.Once            // Ensures Stop() is idempotent
	doneCh        chan struct{}        // Signals watch goroutine has finished
}

// NewFileWatcher creates a watcher over the given data directories.
// Missing directories are allowed as long as their parent exists.
func NewFileWatcher(opts Options) (FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{
		watcher:      watcher,
		dirs:         make(map[string]bool),
		match:        opts.Match,
		ignore:       make(map[string]bool),
		debounceTime: opts.Debounce,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}
	if fw.match == nil {
		fw.match = func(string) bool { return true }
	}
	if fw.debounceTime <= 0 {
		fw.debounceTime = DefaultDebounce
	}
	for _, p := range opts.Ignore {
		fw.ignore[filepath.Clean(p)] = true
	}

	watched := 0
	parents := make(map[string]bool)
	for _, dir := range opts.Dirs {
		dir = filepath.Clean(dir)
		fw.dirs[dir] = true

		if isDir(dir) {
			if err := watcher.Add(dir); err != nil {
				watcher.Close()
				return nil, err
			}
			watched++
		}

		parent := filepath.Dir(dir)
		if parents[parent] || !isDir(parent) {
			continue
		}
		if err := watcher.Add(parent); err != nil {
			watcher.Close()
			return nil, err
		}
		parents[parent] = true
		watched++
	}

	if watched == 0 {
		watcher.Close()
		return nil, ErrNothingToWatch
	}

	return fw, nil
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(paths []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()

			// Wait for goroutine to finish (only if Start() was called)
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}

		err = fw.watcher.Close()
	})
	return err
}

// watch is the main event loop.
func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	rebuildCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(rebuildCh)

		case <-rebuildCh:
			fw.handleDebounceExpired()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// shouldProcessEvent reports whether an event changes the manifest contents.
// A data directory appearing is also added to the watch list.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)
	if fw.ignore[name] {
		return false
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	// Event in a parent directory about a data directory itself
	if fw.dirs[name] {
		if event.Op&fsnotify.Create != 0 && isDir(name) {
			if err := fw.watcher.Add(name); err != nil {
				log.Printf("Warning: failed to watch new directory %s: %v", name, err)
			}
		}
		return true
	}

	if !fw.dirs[filepath.Dir(name)] {
		return false
	}
	return fw.match(filepath.Base(name))
}

// handleDebounceExpired fires the callback with the accumulated paths.
func (fw *fileWatcher) handleDebounceExpired() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}

	paths := make([]string, 0, len(fw.accumulated))
	for p := range fw.accumulated {
		paths = append(paths, p)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	sort.Strings(paths)
	if fw.callback != nil {
		fw.callback(paths)
	}
}

// resetDebounceTimer resets the debounce timer, properly stopping the old one.
func (fw *fileWatcher) resetDebounceTimer(rebuildCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case rebuildCh <- struct{}{}:
		default:
		}
	})
}

// stopDebounceTimer stops the debounce timer if it exists.
func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
