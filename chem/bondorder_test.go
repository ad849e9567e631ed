package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godock/dockerr"
)

// naiveCopy rebuilds a molecule with the same elements and
// connectivity but all bonds single and no charges, the shape a
// perceived PDB pose comes in.
func naiveCopy(m *Molecule) *Molecule {
	n := NewMolecule()
	for _, a := range m.Atoms {
		n.AddAtom(NewAtom(a.Symbol))
	}
	for _, b := range m.Bonds {
		n.AddBond(b.From, b.To, 1, false)
	}
	return n
}

func TestAssignBondOrders(t *testing.T) {
	ref, err := ParseSMILES("CC(=O)O")
	require.NoError(t, err)

	subject := naiveCopy(ref)
	out, err := AssignBondOrders(subject, ref)
	require.NoError(t, err)
	assert.Equal(t, CanonicalSMILES(ref), CanonicalSMILES(out))
}

func TestAssignBondOrdersAromatic(t *testing.T) {
	ref, err := ParseSMILES("c1ccc(O)cc1")
	require.NoError(t, err)

	subject := naiveCopy(ref)
	out, err := AssignBondOrders(subject, ref)
	require.NoError(t, err)
	assert.Equal(t, CanonicalSMILES(ref), CanonicalSMILES(out))
}

func TestAssignBondOrdersRestoresCharge(t *testing.T) {
	ref, err := ParseSMILES("CC(=O)[O-]")
	require.NoError(t, err)

	subject := naiveCopy(ref)
	out, err := AssignBondOrders(subject, ref)
	require.NoError(t, err)

	total := 0
	for _, a := range out.Atoms {
		total += a.Charge
	}
	assert.Equal(t, -1, total)
}

func TestAssignBondOrdersAtomCountMismatch(t *testing.T) {
	ref, err := ParseSMILES("CCO")
	require.NoError(t, err)
	subject, err := ParseSMILES("CCCO")
	require.NoError(t, err)

	_, err = AssignBondOrders(subject, ref)
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindIntegrity))
}

func TestAssignBondOrdersNoMapping(t *testing.T) {
	ref, err := ParseSMILES("CCN")
	require.NoError(t, err)
	subject, err := ParseSMILES("CCO")
	require.NoError(t, err)

	_, err = AssignBondOrders(subject, ref)
	require.Error(t, err)
	assert.True(t, dockerr.IsKind(err, dockerr.KindIntegrity))
}
