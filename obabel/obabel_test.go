package obabel

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godock/dockerr"
)

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner("", 0, nil)
	assert.Equal(t, DefaultBinary, r.bin)
	assert.NotNil(t, r.log)
}

func TestIsSetupFailure(t *testing.T) {
	assert.True(t, isSetupFailure("Could not setup force field."))
	assert.True(t, isSetupFailure("warning: Could not find parameters for all atoms"))
	assert.True(t, isSetupFailure("Failed to kekulize aromatic bonds"))
	assert.False(t, isSetupFailure("1 molecule converted"))
}

func TestRunMissingBinary(t *testing.T) {
	r := NewRunner("definitely-not-a-real-obabel", 0, nil)
	err := r.ConvertMolToPDBQT(context.Background(), "in.mol", "out.pdbqt")
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindTool))
}

func TestProtonateSMILES(t *testing.T) {
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		t.Skip("obabel not installed")
	}
	r := NewRunner("", time.Minute, nil)
	out, err := r.ProtonateSMILES(context.Background(), "CC(=O)O")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.NotContains(t, out, " ")
}

func TestGen3D(t *testing.T) {
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		t.Skip("obabel not installed")
	}
	r := NewRunner("", 2*time.Minute, nil)
	dst := filepath.Join(t.TempDir(), "out.mol")
	require.NoError(t, r.Gen3D(context.Background(), "CCO", dst))
	assert.FileExists(t, dst)
}

func TestGen3DDeterministic(t *testing.T) {
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		t.Skip("obabel not installed")
	}
	r := NewRunner("", 2*time.Minute, nil)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.mol")
	second := filepath.Join(dir, "second.mol")

	require.NoError(t, r.Gen3D(context.Background(), "CC(C)CO", first))
	require.NoError(t, r.Gen3D(context.Background(), "CC(C)CO", second))

	// The MOL header carries a timestamp; the structure starts at the
	// counts line.
	body := func(path string) string {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		parts := strings.SplitN(string(data), "\n", 4)
		require.Len(t, parts, 4)
		return parts[3]
	}
	assert.Equal(t, body(first), body(second))
}

func TestMinimizeSetupSentinel(t *testing.T) {
	err := dockerr.Wrap(dockerr.KindTool, ErrForceFieldSetup, "MMFF94 minimization failed")
	assert.True(t, errors.Is(err, ErrForceFieldSetup))
	assert.True(t, dockerr.IsKind(err, dockerr.KindTool))
}
