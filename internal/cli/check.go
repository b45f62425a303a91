package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/RedSkip08/SwedishinFrames/internal/manifest"
	"github.com/spf13/cobra"
)

// checkCmd verifies the manifest without writing it
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the manifest matches the data directories",
	Long: `Check rescans the data directories and compares the result with the
manifest on disk, byte for byte. Nothing is written.

Exits with a non-zero status when the manifest is missing or stale, which
makes it suitable for CI.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	return executeCheck(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), currentOptions())
}

func executeCheck(ctx context.Context, stdout, stderr io.Writer, opts runOptions) error {
	s, err := newSession(opts, stderr)
	if err != nil {
		return err
	}

	res, err := manifest.Check(s.fs, s.manifestOptions())
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s is up to date (%d lus, %d frames, %d constructions)\n",
		res.Output, len(res.Manifest.LUs), len(res.Manifest.Frames), len(res.Manifest.Constructions))
	return nil
}
