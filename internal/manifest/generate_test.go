package manifest

import (
	"encoding/json"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Generate/Check:
// - Generate end-to-end: one LU, one frame, no constructions
// - Generate twice produces byte-identical output
// - Generate with missing frames leaves a pre-existing manifest untouched
// - Generate honors a custom output location
// - Check passes right after Generate
// - Check reports ErrStale after a new data file appears
// - Check reports ErrStale when the manifest is missing

func TestGenerate_EndToEnd(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "data/lus/run.v.json", "data/frames/Motion.json")

	res, err := Generate(fsys, DefaultOptions(testRoot))
	require.NoError(t, err)

	data, err := afero.ReadFile(fsys, filepath.Join(testRoot, "data", "manifest.json"))
	require.NoError(t, err)
	assert.Equal(t, res.Data, data)

	var decoded map[string][]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string][]string{
		"lus":           {"data/lus/run.v.json"},
		"frames":        {"data/frames/Motion.json"},
		"constructions": {},
	}, decoded)

	assert.Equal(t, "data/manifest.json", res.Output)
	assert.Equal(t, "Wrote data/manifest.json with 1 lus, 1 frames.", res.Summary())
}

func TestGenerate_Idempotent(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys,
		"data/lus/run.v.json",
		"data/lus/springa.v.json",
		"data/frames/Motion.json",
		"data/constructions/cx_1.json",
	)
	out := filepath.Join(testRoot, "data", "manifest.json")

	_, err := Generate(fsys, DefaultOptions(testRoot))
	require.NoError(t, err)
	first, err := afero.ReadFile(fsys, out)
	require.NoError(t, err)

	_, err = Generate(fsys, DefaultOptions(testRoot))
	require.NoError(t, err)
	second, err := afero.ReadFile(fsys, out)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerate_MissingFramesKeepsExistingManifest(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "data/lus/run.v.json")
	out := filepath.Join(testRoot, "data", "manifest.json")
	require.NoError(t, afero.WriteFile(fsys, out, []byte("previous"), 0644))

	res, err := Generate(fsys, DefaultOptions(testRoot))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	data, err := afero.ReadFile(fsys, out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestGenerate_CustomOutput(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "data/lus/run.v.json", "data/frames/Motion.json")
	require.NoError(t, fsys.MkdirAll(filepath.Join(testRoot, "build"), 0755))

	opts := DefaultOptions(testRoot)
	opts.Output = "build/./index.json"

	res, err := Generate(fsys, opts)
	require.NoError(t, err)
	assert.Equal(t, "build/index.json", res.Output)

	exists, err := afero.Exists(fsys, filepath.Join(testRoot, "build", "index.json"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCheck_UpToDate(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "data/lus/run.v.json", "data/frames/Motion.json")

	_, err := Generate(fsys, DefaultOptions(testRoot))
	require.NoError(t, err)

	res, err := Check(fsys, DefaultOptions(testRoot))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Manifest.Count())
}

func TestCheck_StaleAfterNewFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "data/lus/run.v.json", "data/frames/Motion.json")

	_, err := Generate(fsys, DefaultOptions(testRoot))
	require.NoError(t, err)

	writeFiles(t, fsys, "data/lus/walk.v.json")

	res, err := Check(fsys, DefaultOptions(testRoot))
	assert.ErrorIs(t, err, ErrStale)
	require.NotNil(t, res)
	assert.Len(t, res.Manifest.LUs, 2)
}

func TestCheck_MissingManifest(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, "data/lus/run.v.json", "data/frames/Motion.json")

	_, err := Check(fsys, DefaultOptions(testRoot))
	assert.ErrorIs(t, err, ErrStale)
	assert.Contains(t, err.Error(), "does not exist")
}
