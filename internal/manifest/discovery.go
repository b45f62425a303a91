package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// DefaultPattern selects data files by base name. Matching is case-sensitive.
const DefaultPattern = "*.json"

// ErrNotDirectory indicates a category path exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Discovery lists the data files of a category directory.
// Listing is non-recursive: only direct children whose base name matches
// the pattern are returned.
type Discovery struct {
	fs      afero.Fs
	rootDir string
	pattern string
	glob    glob.Glob
}

// NewDiscovery creates a discovery rooted at rootDir. An empty pattern means
// DefaultPattern.
func NewDiscovery(fs afero.Fs, rootDir, pattern string) (*Discovery, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}

	return &Discovery{
		fs:      fs,
		rootDir: rootDir,
		pattern: pattern,
		glob:    g,
	}, nil
}

// Pattern returns the base name pattern in use.
func (d *Discovery) Pattern() string {
	return d.pattern
}

// MatchName reports whether a base name selects a data file.
func (d *Discovery) MatchName(name string) bool {
	return d.glob.Match(name)
}

// Discover returns the root-relative, slash-separated paths of the data files
// in the category directory, sorted by ordinal string comparison.
//
// A missing directory is an error wrapping fs.ErrNotExist for required
// categories and an empty list for optional ones.
func (d *Discovery) Discover(c Category) ([]string, error) {
	dir := filepath.Join(d.rootDir, filepath.FromSlash(c.Dir))

	info, err := d.fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) && !c.Required {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%s directory: %w", c.Key, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s directory %s: %w", c.Key, dir, ErrNotDirectory)
	}

	entries, err := afero.ReadDir(d.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s directory: %w", c.Key, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !d.MatchName(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if !d.isRegular(path, entry) {
			continue
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return nil, err
		}
		files = append(files, filepath.ToSlash(relPath))
	}

	sort.Strings(files)
	return files, nil
}

// isRegular reports whether the entry is a file, following symlinks.
// Broken links are skipped.
func (d *Discovery) isRegular(path string, entry os.FileInfo) bool {
	if entry.Mode()&os.ModeSymlink == 0 {
		return entry.Mode().IsRegular()
	}
	target, err := d.fs.Stat(path)
	if err != nil {
		return false
	}
	return target.Mode().IsRegular()
}
