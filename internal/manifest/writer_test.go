package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Encode/Write/Summary:
// - Encode produces two-space indented JSON with keys in manifest order and a trailing newline
// - Encode writes empty categories as []
// - Encode keeps non-ASCII and HTML characters literal
// - Write replaces an existing file and leaves no temp files behind
// - Write fails when the parent directory is missing and creates nothing
// - Write produces a world-readable file
// - Write keeps the permissions of an existing manifest
// - Write goes through a symlinked manifest and keeps the link
// - Write creates the target of a dangling symlink
// - Write fails on a symlink loop
// - Summary omits the constructions clause when there are none

func TestEncode_Format(t *testing.T) {
	t.Parallel()

	m := New()
	m.LUs = []string{"data/lus/run.v.json"}
	m.Frames = []string{"data/frames/Motion.json"}

	data, err := Encode(m)
	require.NoError(t, err)

	expected := "{\n" +
		"  \"lus\": [\n" +
		"    \"data/lus/run.v.json\"\n" +
		"  ],\n" +
		"  \"frames\": [\n" +
		"    \"data/frames/Motion.json\"\n" +
		"  ],\n" +
		"  \"constructions\": []\n" +
		"}\n"
	assert.Equal(t, expected, string(data))
}

func TestEncode_NilManifest(t *testing.T) {
	t.Parallel()

	data, err := Encode(nil)
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"lus\": [],\n  \"frames\": [],\n  \"constructions\": []\n}\n", string(data))
}

func TestEncode_PreservesNonASCII(t *testing.T) {
	t.Parallel()

	m := New()
	m.LUs = []string{"data/lus/gå.v.json", "data/lus/öga.n.json", "data/lus/a&b<c>.json"}

	data, err := Encode(m)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"data/lus/gå.v.json"`)
	assert.Contains(t, string(data), `"data/lus/öga.n.json"`)
	assert.Contains(t, string(data), `"data/lus/a&b<c>.json"`)
	assert.NotContains(t, string(data), `\u`)
}

func TestWrite_ReplacesExistingFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	out := filepath.Join(testRoot, "data", "manifest.json")
	require.NoError(t, fsys.MkdirAll(filepath.Dir(out), 0755))
	require.NoError(t, afero.WriteFile(fsys, out, []byte("old content that is longer than the new one"), 0644))

	require.NoError(t, Write(fsys, out, []byte("{}\n")))

	data, err := afero.ReadFile(fsys, out)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))

	entries, err := afero.ReadDir(fsys, filepath.Dir(out))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manifest.json", entries[0].Name())
}

func TestWrite_MissingParentDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := filepath.Join(root, "data", "manifest.json")

	err := Write(afero.NewOsFs(), out, []byte("{}\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, statErr := os.Stat(filepath.Join(root, "data"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWrite_FileMode(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := filepath.Join(root, "manifest.json")

	require.NoError(t, Write(afero.NewOsFs(), out, []byte("{}\n")))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestWrite_KeepsExistingMode(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := filepath.Join(root, "manifest.json")
	require.NoError(t, os.WriteFile(out, []byte("old"), 0600))
	require.NoError(t, os.Chmod(out, 0600))

	require.NoError(t, Write(afero.NewOsFs(), out, []byte("{}\n")))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestWrite_ThroughSymlink(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0755))
	target := filepath.Join(root, "published.json")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))
	out := filepath.Join(root, "data", "manifest.json")
	require.NoError(t, os.Symlink("../published.json", out))

	require.NoError(t, Write(afero.NewOsFs(), out, []byte("{}\n")))

	info, err := os.Lstat(out)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "manifest link was replaced")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestWrite_DanglingSymlink(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "published.json")
	out := filepath.Join(root, "manifest.json")
	require.NoError(t, os.Symlink(target, out))

	require.NoError(t, Write(afero.NewOsFs(), out, []byte("{}\n")))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestWrite_SymlinkLoop(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := filepath.Join(root, "a.json")
	b := filepath.Join(root, "b.json")
	require.NoError(t, os.Symlink(b, a))
	require.NoError(t, os.Symlink(a, b))

	err := Write(afero.NewOsFs(), a, []byte("{}\n"))
	assert.ErrorIs(t, err, ErrTooManyLinks)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	m := New()
	m.LUs = []string{"data/lus/run.v.json"}
	m.Frames = []string{"data/frames/Motion.json"}

	assert.Equal(t, "Wrote data/manifest.json with 1 lus, 1 frames.", Summary("data/manifest.json", m))

	m.Constructions = []string{"data/constructions/a.json", "data/constructions/b.json"}
	assert.Equal(t, "Wrote data/manifest.json with 1 lus, 1 frames, and 2 constructions.", Summary("data/manifest.json", m))
}
