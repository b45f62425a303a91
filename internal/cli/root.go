package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootDir string
	cfgFile string
	verbose bool
)

// rootCmd builds the manifest when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "sif-manifest",
	Short: "Write data/manifest.json from the LU, frame and construction directories",
	Long: `sif-manifest scans data/lus, data/frames and data/constructions for JSON
files and writes the combined list to data/manifest.json, the index the
browser front end loads.

The lus and frames directories must exist. A missing constructions
directory yields an empty list.

Examples:
  # Rebuild the manifest of the repository in the current directory
  sif-manifest

  # Rebuild another checkout
  sif-manifest -C ../SwedishinFrames

  # Fail when the committed manifest is out of date
  sif-manifest check
`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBuild,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "C", "", "repository root (default is the current directory)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <root>/.sif/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// currentOptions captures the global flags.
func currentOptions() runOptions {
	return runOptions{
		rootDir:    rootDir,
		configFile: cfgFile,
		verbose:    verbose,
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	return executeBuild(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), currentOptions())
}
