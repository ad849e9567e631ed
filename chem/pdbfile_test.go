package chem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godock/dockerr"
)

const ethanolPDB = `COMPND    UNNAMED
ATOM      1  C1  UNL     1       0.000   0.000   0.000  1.00  0.00           C
ATOM      2  C2  UNL     1       1.500   0.000   0.000  1.00  0.00           C
ATOM      3  O1  UNL     1       2.100   1.200   0.000  1.00  0.00           O
END
`

func TestParsePDB(t *testing.T) {
	m, err := ParsePDB(ethanolPDB)
	require.NoError(t, err)
	require.Equal(t, 3, m.NumAtoms())
	assert.Equal(t, "C", m.Atoms[0].Symbol)
	assert.Equal(t, "O", m.Atoms[2].Symbol)
	require.True(t, m.HasConformer())
	assert.InDelta(t, 1.2, m.Coords[2].Y, 1e-6)

	// C1-C2 and C2-O1 are within covalent range; C1-O1 is not.
	require.Len(t, m.Bonds, 2)
	assert.NotNil(t, m.BondBetween(0, 1))
	assert.NotNil(t, m.BondBetween(1, 2))
	assert.Nil(t, m.BondBetween(0, 2))
}

func TestReadPDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ligand.pdb")
	require.NoError(t, os.WriteFile(path, []byte(ethanolPDB), 0o644))

	m, err := ReadPDBFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumAtoms())
	assert.True(t, m.HasConformer())
}

func TestReadPDBFileMissing(t *testing.T) {
	_, err := ReadPDBFile(filepath.Join(t.TempDir(), "missing.pdb"))
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindParse))
}

func TestParsePDBElementFromName(t *testing.T) {
	// No element columns; the atom name has to carry the element.
	m, err := ParsePDB("HETATM    1 CL1  UNL     1       0.000   0.000   0.000\n")
	require.NoError(t, err)
	require.Equal(t, 1, m.NumAtoms())
	assert.Equal(t, "Cl", m.Atoms[0].Symbol)
}

func TestParsePDBNoAtoms(t *testing.T) {
	_, err := ParsePDB("COMPND    EMPTY\nEND\n")
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindParse))
}

func TestParsePDBBadCoordinates(t *testing.T) {
	_, err := ParsePDB("ATOM      1  C1  UNL     1       x.xxx   0.000   0.000  1.00  0.00           C\n")
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindParse))
}
