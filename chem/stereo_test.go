package chem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignStereochemistryFrom3D(t *testing.T) {
	// Bromochlorofluoromethane: one stereocenter with an implicit H.
	m, err := ParseSMILES("C(F)(Cl)Br")
	require.NoError(t, err)
	m.Coords = []Point3{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}

	AssignStereochemistryFrom3D(m)
	assert.Equal(t, ParityCCW, m.Atoms[0].Parity)
	assert.Equal(t, []int{1, 2, 3, -1}, m.Atoms[0].StereoRef)
	assert.Contains(t, CanonicalSMILES(m), "@")
}

func TestAssignStereochemistryMirror(t *testing.T) {
	m, err := ParseSMILES("C(F)(Cl)Br")
	require.NoError(t, err)
	m.Coords = []Point3{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	AssignStereochemistryFrom3D(m)
	a := CanonicalSMILES(m)

	for i := range m.Coords {
		m.Coords[i].Z = -m.Coords[i].Z
	}
	AssignStereochemistryFrom3D(m)
	b := CanonicalSMILES(m)

	assert.Equal(t, ParityCW, m.Atoms[0].Parity)
	assert.NotEqual(t, a, b)
}

func TestAssignStereochemistryNoConformer(t *testing.T) {
	m, err := ParseSMILES("C[C@H](N)O")
	require.NoError(t, err)
	require.Equal(t, ParityCCW, m.Atoms[1].Parity)

	AssignStereochemistryFrom3D(m)
	assert.Equal(t, ParityNone, m.Atoms[1].Parity)
	assert.False(t, strings.Contains(CanonicalSMILES(m), "@"))
}

func TestAssignStereochemistrySymmetricCenter(t *testing.T) {
	// Isopropanol's central carbon has two equivalent methyls.
	m, err := ParseSMILES("CC(C)O")
	require.NoError(t, err)
	m.Coords = []Point3{
		{1.4, 0, 0},
		{0, 0, 0},
		{-0.7, 1.2, 0},
		{-0.7, -1.2, 0},
	}
	AssignStereochemistryFrom3D(m)
	for _, a := range m.Atoms {
		assert.Equal(t, ParityNone, a.Parity)
	}
}
