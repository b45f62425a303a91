package watcher

import "context"

// FileWatcher monitors the data directories for changes with debouncing.
type FileWatcher interface {
	// Start begins watching, calling callback with debounced changed paths.
	Start(ctx context.Context, callback func(paths []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error
}
