package manifest

import "fmt"

// ProgressReporter receives scan progress from a Builder.
type ProgressReporter interface {
	OnScanStart(totalCategories int)
	OnCategoryScanned(c Category, files int)
	OnScanComplete(m *Manifest)
}

// NoOpProgressReporter discards all progress.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnScanStart(int)                 {}
func (NoOpProgressReporter) OnCategoryScanned(Category, int) {}
func (NoOpProgressReporter) OnScanComplete(*Manifest)        {}

// Builder assembles a Manifest from the category directories.
type Builder struct {
	discovery  *Discovery
	categories []Category
	progress   ProgressReporter
}

// NewBuilder creates a builder. A nil reporter is replaced with a no-op one.
func NewBuilder(discovery *Discovery, categories []Category, progress ProgressReporter) *Builder {
	if progress == nil {
		progress = NoOpProgressReporter{}
	}
	return &Builder{
		discovery:  discovery,
		categories: categories,
		progress:   progress,
	}
}

// Build performs a full rescan. It stops at the first category that fails,
// so a missing required directory never yields a partial manifest.
func (b *Builder) Build() (*Manifest, error) {
	m := New()
	b.progress.OnScanStart(len(b.categories))

	for _, c := range b.categories {
		files, err := b.discovery.Discover(c)
		if err != nil {
			return nil, err
		}
		if !m.Set(c.Key, files) {
			return nil, fmt.Errorf("unknown manifest category %q", c.Key)
		}
		b.progress.OnCategoryScanned(c, len(files))
	}

	b.progress.OnScanComplete(m)
	return m, nil
}
