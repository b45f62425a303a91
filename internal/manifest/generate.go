package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrStale indicates the manifest on disk does not match a fresh scan.
var ErrStale = errors.New("manifest is out of date")

// Options configures a full generation run.
type Options struct {
	RootDir    string
	Output     string // relative to RootDir
	Pattern    string
	Categories []Category
	Progress   ProgressReporter
}

// DefaultOptions returns the repository defaults for rootDir.
func DefaultOptions(rootDir string) Options {
	return Options{
		RootDir:    rootDir,
		Output:     "data/manifest.json",
		Pattern:    DefaultPattern,
		Categories: DefaultCategories(),
	}
}

// OutputPath returns the absolute (root-joined) output location.
func (o Options) OutputPath() string {
	return filepath.Join(o.RootDir, filepath.FromSlash(o.Output))
}

// Result describes a completed generation.
type Result struct {
	Manifest *Manifest
	Output   string // root-relative, slash-separated
	Data     []byte
}

// Summary returns the human-readable line for this result.
func (r *Result) Summary() string {
	return Summary(r.Output, r.Manifest)
}

// Render scans the categories and encodes the manifest without touching the
// output file.
func Render(fs afero.Fs, opts Options) (*Result, error) {
	discovery, err := NewDiscovery(fs, opts.RootDir, opts.Pattern)
	if err != nil {
		return nil, err
	}

	m, err := NewBuilder(discovery, opts.Categories, opts.Progress).Build()
	if err != nil {
		return nil, err
	}

	data, err := Encode(m)
	if err != nil {
		return nil, err
	}

	return &Result{
		Manifest: m,
		Output:   filepath.ToSlash(filepath.Clean(filepath.FromSlash(opts.Output))),
		Data:     data,
	}, nil
}

// Generate rescans the categories and replaces the output file.
// Nothing is written when the scan fails.
func Generate(fs afero.Fs, opts Options) (*Result, error) {
	res, err := Render(fs, opts)
	if err != nil {
		return nil, err
	}
	if err := Write(fs, opts.OutputPath(), res.Data); err != nil {
		return nil, err
	}
	return res, nil
}

// Check compares a fresh scan with the manifest on disk. It returns ErrStale
// when the file is missing or differs byte-wise.
func Check(fs afero.Fs, opts Options) (*Result, error) {
	res, err := Render(fs, opts)
	if err != nil {
		return nil, err
	}

	current, err := Read(fs, opts.OutputPath())
	if err != nil {
		if os.IsNotExist(err) {
			return res, fmt.Errorf("%w: %s does not exist", ErrStale, res.Output)
		}
		return nil, err
	}

	if !bytes.Equal(current, res.Data) {
		return res, fmt.Errorf("%w: %s", ErrStale, res.Output)
	}
	return res, nil
}
