package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/RedSkip08/SwedishinFrames/internal/manifest"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter renders scan progress as a progress bar.
type CLIProgressReporter struct {
	out       io.Writer
	bar       *progressbar.ProgressBar
	startTime time.Time
}

// NewCLIProgressReporter creates a reporter writing to out (normally stderr,
// so stdout keeps only the summary line).
func NewCLIProgressReporter(out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{
		out:       out,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnScanStart(totalCategories int) {
	c.startTime = time.Now()
	c.bar = progressbar.NewOptions(totalCategories,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Scanning data directories"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnCategoryScanned(cat manifest.Category, files int) {
	if c.bar != nil {
		c.bar.Describe(fmt.Sprintf("Scanned %s", cat.Dir))
		c.bar.Add(1)
	}
}

func (c *CLIProgressReporter) OnScanComplete(m *manifest.Manifest) {
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
	fmt.Fprintf(c.out, "✓ Found %d data files in %.1fs\n", m.Count(), time.Since(c.startTime).Seconds())
}
