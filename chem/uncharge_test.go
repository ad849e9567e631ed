package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCanonical(t *testing.T, s string) string {
	t.Helper()
	c, err := Canonicalize(s)
	require.NoError(t, err)
	return c
}

func TestUnchargeAmmonium(t *testing.T) {
	m, err := ParseSMILES("C[NH3+]")
	require.NoError(t, err)
	u := Uncharge(m)
	assert.Equal(t, 0, u.Atoms[1].Charge)
	assert.Equal(t, mustCanonical(t, "CN"), CanonicalSMILES(u))
}

func TestUnchargeCarboxylate(t *testing.T) {
	m, err := ParseSMILES("CC(=O)[O-]")
	require.NoError(t, err)
	u := Uncharge(m)
	assert.Equal(t, mustCanonical(t, "CC(=O)O"), CanonicalSMILES(u))
}

func TestUnchargeZwitterion(t *testing.T) {
	m, err := ParseSMILES("[NH3+]CCC(=O)[O-]")
	require.NoError(t, err)
	u := Uncharge(m)
	for _, a := range u.Atoms {
		assert.Equal(t, 0, a.Charge)
	}
	assert.Equal(t, mustCanonical(t, "NCCC(=O)O"), CanonicalSMILES(u))
}

func TestUnchargeKeepsQuaternaryNitrogen(t *testing.T) {
	m, err := ParseSMILES("C[N+](C)(C)C.[Cl-]")
	require.NoError(t, err)
	u := Uncharge(m)

	var pos, neg int
	for _, a := range u.Atoms {
		switch {
		case a.Charge > 0:
			pos += a.Charge
		case a.Charge < 0:
			neg -= a.Charge
		}
	}
	// The fixed cation keeps its charge and one counter-anion balances it.
	assert.Equal(t, 1, pos)
	assert.Equal(t, 1, neg)
}

func TestUnchargeNeutralUnchanged(t *testing.T) {
	m, err := ParseSMILES("CCO")
	require.NoError(t, err)
	u := Uncharge(m)
	assert.Equal(t, CanonicalSMILES(m), CanonicalSMILES(u))
}
