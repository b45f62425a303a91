package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked indicates another process is writing the same manifest.
var ErrLocked = errors.New("manifest is locked by another process")

const lockRetryDelay = 50 * time.Millisecond

// lockPath returns the lock file for an output path. Locks live outside the
// repository so the data directory only ever holds data files.
func lockPath(outputPath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(outputPath)))
	return filepath.Join(os.TempDir(), "sif-manifest-"+hex.EncodeToString(sum[:8])+".lock")
}

// withWriteLock runs fn while holding the advisory lock for outputPath.
// A zero timeout means a single attempt.
func withWriteLock(ctx context.Context, outputPath string, timeout time.Duration, fn func() error) error {
	lock := flock.New(lockPath(outputPath))

	var locked bool
	var err error
	if timeout <= 0 {
		locked, err = lock.TryLock()
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, timeout)
		locked, err = lock.TryLockContext(lockCtx, lockRetryDelay)
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w (%s)", ErrLocked, lock.Path())
	}
	defer lock.Unlock()

	return fn()
}
