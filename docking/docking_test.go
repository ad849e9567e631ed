package docking

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godock/chem"
	"godock/dockerr"
	"godock/obabel"
)

const searchBox = `center_x = 15.190
center_y = 53.903
center_z = 16.917
size_x = 20.0
size_y = 20.0
size_z = 20.0
`

func writeTarget(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+receptorSuffix), []byte("RECEPTOR\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+confSuffix), []byte(searchBox), 0o644))
}

func TestTargets(t *testing.T) {
	dir := t.TempDir()
	writeTarget(t, dir, "DRD2")
	writeTarget(t, dir, "ABL1")

	names, err := Targets(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABL1", "DRD2"}, names)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeTarget(t, dir, "DRD2")

	tgt, err := Load(dir, "DRD2")
	require.NoError(t, err)
	assert.Equal(t, "DRD2", tgt.Name)
	assert.Len(t, tgt.SearchBox, 6)
	assert.InDelta(t, 15.190, tgt.SearchBox["center_x"], 1e-9)
}

func TestLoadMissingReceptor(t *testing.T) {
	_, err := Load(t.TempDir(), "DRD2")
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindParse))
}

func TestVerifyDockedLigand(t *testing.T) {
	ref, err := chem.ParseSMILES("CCO")
	require.NoError(t, err)

	assert.NoError(t, VerifyDockedLigand(ref, ref.Copy()))

	other, err := chem.ParseSMILES("CCN")
	require.NoError(t, err)
	err = VerifyDockedLigand(ref, other)
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindIntegrity))
	assert.Contains(t, err.Error(), "CCO")
	assert.Contains(t, err.Error(), "CCN")
}

func TestVerifyDockedLigandEnantiomer(t *testing.T) {
	ref, err := chem.ParseSMILES("C(F)(Cl)Br")
	require.NoError(t, err)
	ref.Coords = []chem.Point3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}

	require.NoError(t, VerifyDockedLigand(ref, ref.Copy()))

	mirror := ref.Copy()
	for i := range mirror.Coords {
		mirror.Coords[i].Z = -mirror.Coords[i].Z
	}
	err = VerifyDockedLigand(ref, mirror)
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindIntegrity))
}

func TestLigandKeyStable(t *testing.T) {
	assert.Equal(t, ligandKey("CCO"), ligandKey("CCO"))
	assert.NotEqual(t, ligandKey("CCO"), ligandKey("CCN"))
	assert.Len(t, ligandKey("CCO"), 16)
}

func TestPrepareWithObabel(t *testing.T) {
	if _, err := exec.LookPath(obabel.DefaultBinary); err != nil {
		t.Skip("obabel not installed")
	}
	runner := obabel.NewRunner("", 2*time.Minute, nil)
	p := NewPipeline(runner, nil)

	prep, err := p.Prepare(context.Background(), "CCO", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "CCO", prep.SMILES)
	assert.True(t, prep.Mol.HasConformer())
	assert.FileExists(t, prep.MolFile)
}
