package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/RedSkip08/SwedishinFrames/internal/manifest"
	"github.com/RedSkip08/SwedishinFrames/internal/watcher"
	"github.com/spf13/cobra"
)

// watchCmd rebuilds the manifest whenever the data directories change
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the manifest whenever data files change",
	Long: `Watch builds the manifest once and then rebuilds it after every burst of
changes in the data directories, until interrupted.

Failed rebuilds (for example while data/frames is being moved) are logged
and the previous manifest is kept.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return executeWatch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), currentOptions())
}

func executeWatch(ctx context.Context, stdout, stderr io.Writer, opts runOptions) error {
	s, err := newSession(opts, stderr)
	if err != nil {
		return err
	}

	res, err := s.generate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, res.Summary())

	mopts := s.manifestOptions()
	discovery, err := manifest.NewDiscovery(s.fs, s.rootDir, mopts.Pattern)
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(mopts.Categories))
	for _, c := range mopts.Categories {
		dirs = append(dirs, filepath.Join(s.rootDir, filepath.FromSlash(c.Dir)))
	}

	fw, err := watcher.NewFileWatcher(watcher.Options{
		Dirs:     dirs,
		Match:    discovery.MatchName,
		Ignore:   []string{mopts.OutputPath()},
		Debounce: s.cfg.Watch.Debounce,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Stop()

	// Rebuilds run on this goroutine; a pending signal absorbs further bursts.
	changes := make(chan []string, 1)
	err = fw.Start(ctx, func(paths []string) {
		select {
		case changes <- paths:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	s.logf("Watching %d data directories", len(dirs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			s.logf("Detected %d changed paths", len(paths))
			rebuild(ctx, s, stdout)
		}
	}
}

// rebuild regenerates the manifest unless it is already current.
func rebuild(ctx context.Context, s *session, stdout io.Writer) {
	if _, err := manifest.Check(s.fs, s.cfg.ManifestOptions(s.rootDir)); err == nil {
		s.logf("Manifest unchanged")
		return
	} else if !errors.Is(err, manifest.ErrStale) {
		log.Printf("Rebuild skipped: %v", err)
		return
	}

	res, err := s.generate(ctx)
	if err != nil {
		log.Printf("Rebuild failed: %v", err)
		return
	}
	fmt.Fprintln(stdout, res.Summary())
}
