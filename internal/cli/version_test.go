package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the version command:
// - version prints the ldflags values on the command's output

func TestVersionCommand(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = "1.2.3", "abc1234", "2026-01-02"
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = oldVersion, oldCommit, oldDate
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "sif-manifest 1.2.3\nGit commit: abc1234\nBuild date: 2026-01-02\n", stdout.String())
}
