package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/RedSkip08/SwedishinFrames/internal/config"
	"github.com/RedSkip08/SwedishinFrames/internal/manifest"
	"github.com/spf13/afero"
)

// runOptions are the settings shared by every command.
type runOptions struct {
	rootDir    string
	configFile string
	verbose    bool
}

// session is a loaded configuration bound to an absolute root.
type session struct {
	rootDir string
	cfg     *config.Config
	fs      afero.Fs
	verbose bool
	stderr  io.Writer
}

// newSession resolves the root and loads its configuration.
func newSession(opts runOptions, stderr io.Writer) (*session, error) {
	root := opts.rootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	cfg, err := config.NewLoader(root, loaderOpts...).Load()
	if err != nil {
		return nil, err
	}

	s := &session{
		rootDir: root,
		cfg:     cfg,
		fs:      afero.NewOsFs(),
		verbose: opts.verbose,
		stderr:  stderr,
	}
	s.logf("Using root %s", root)
	return s, nil
}

// manifestOptions returns generation options with a progress reporter
// attached in verbose mode.
func (s *session) manifestOptions() manifest.Options {
	opts := s.cfg.ManifestOptions(s.rootDir)
	if s.verbose {
		opts.Progress = NewCLIProgressReporter(s.stderr)
	}
	return opts
}

// generate rescans and rewrites the manifest while holding the write lock.
func (s *session) generate(ctx context.Context) (*manifest.Result, error) {
	opts := s.manifestOptions()

	var res *manifest.Result
	err := withWriteLock(ctx, opts.OutputPath(), s.cfg.Lock.Timeout, func() error {
		var err error
		res, err = manifest.Generate(s.fs, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *session) logf(format string, args ...any) {
	if s.verbose {
		log.Printf(format, args...)
	}
}

func executeBuild(ctx context.Context, stdout, stderr io.Writer, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(opts, stderr)
	if err != nil {
		return err
	}

	res, err := s.generate(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, res.Summary())
	return nil
}
