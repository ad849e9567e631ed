package vina

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godock/dockerr"
)

func TestParseScores(t *testing.T) {
	scores, err := ParseScores("testdata/poses.pdbqt")
	require.NoError(t, err)
	assert.Equal(t, []float64{-7.2, -6.8}, scores)
}

func TestParseScoresEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdbqt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	scores, err := ParseScores(path)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestParseSearchBox(t *testing.T) {
	conf, err := ParseSearchBox("testdata/conf.txt")
	require.NoError(t, err)
	assert.Len(t, conf, 6)
	assert.InDelta(t, 15.190, conf["center_x"], 1e-9)
	assert.InDelta(t, 20.0, conf["size_z"], 1e-9)
}

func TestParseSearchBoxMissingKey(t *testing.T) {
	_, err := ParseSearchBox("testdata/conf_short.txt")
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindParse))
	assert.Contains(t, err.Error(), "5 keys")
}

func TestCheckOutput(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.pdbqt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	err := CheckOutput(empty)
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindTool))

	full := filepath.Join(dir, "full.pdbqt")
	require.NoError(t, os.WriteFile(full, []byte("MODEL 1\n"), 0o644))
	assert.NoError(t, CheckOutput(full))
}

func TestBinaryName(t *testing.T) {
	name, err := BinaryName()
	if runtime.GOOS != "linux" {
		require.Error(t, err)
		return
	}
	require.NoError(t, err)
	assert.Equal(t, "vina_linux", name)
}

func TestFindMissing(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("binary name only defined on linux")
	}
	_, err := Find(t.TempDir())
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindTool))
}
