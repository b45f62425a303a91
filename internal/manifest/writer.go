package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Encode serializes the manifest with two-space indentation and a trailing
// newline. Non-ASCII text and HTML characters are written literally.
func Encode(m *Manifest) ([]byte, error) {
	if m == nil {
		m = New()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return buf.Bytes(), nil
}

const (
	defaultFileMode os.FileMode = 0644
	maxLinkDepth    = 40
)

// ErrTooManyLinks indicates a symlink chain that does not end.
var ErrTooManyLinks = errors.New("too many levels of symbolic links")

// Write replaces path with data using a temp file and rename, so readers see
// either the previous manifest or the new one. The parent directory must
// already exist. A symlinked manifest is written through the link, and an
// existing file keeps its permissions.
func Write(fs afero.Fs, path string, data []byte) error {
	path, err := resolveLink(fs, path)
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	perm := defaultFileMode
	if existing, err := fs.Stat(path); err == nil {
		perm = existing.Mode().Perm()
	}

	dir := filepath.Dir(path)
	info, err := fs.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to write manifest: %s: %w", dir, ErrNotDirectory)
	}

	tmp, err := afero.TempFile(fs, dir, ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := fs.Chmod(tempPath, perm); err != nil {
		fs.Remove(tempPath)
		return fmt.Errorf("failed to set manifest permissions: %w", err)
	}

	// Rename to final location (atomic operation)
	if err := fs.Rename(tempPath, path); err != nil {
		fs.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// resolveLink follows symlinks at path to the file they point to. The final
// target may not exist yet. Filesystems without link support return path.
func resolveLink(fs afero.Fs, path string) (string, error) {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return path, nil
	}
	reader, ok := fs.(afero.LinkReader)
	if !ok {
		return path, nil
	}

	for i := 0; i < maxLinkDepth; i++ {
		info, _, err := lstater.LstatIfPossible(path)
		if err != nil {
			if os.IsNotExist(err) {
				return path, nil
			}
			return "", err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return path, nil
		}

		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}
	return "", fmt.Errorf("%s: %w", path, ErrTooManyLinks)
}

// Read returns the bytes of an existing manifest.
func Read(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return data, nil
}

// Summary formats the line printed after a successful write. The
// constructions clause only appears when there are constructions.
func Summary(outPath string, m *Manifest) string {
	s := fmt.Sprintf("Wrote %s with %d lus, %d frames", outPath, len(m.LUs), len(m.Frames))
	if len(m.Constructions) > 0 {
		return s + fmt.Sprintf(", and %d constructions.", len(m.Constructions))
	}
	return s + "."
}
