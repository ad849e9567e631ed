package dockerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godock/dockerr"
)

func TestErrorMessage(t *testing.T) {
	err := dockerr.Parse("incorrect number of molecular fragments (%d)", 2)
	assert.Equal(t, "docking: parse: incorrect number of molecular fragments (2)", err.Error())
}

func TestWrapCarriesCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := dockerr.Wrap(dockerr.KindTool, cause, "conversion from PDBQT to PDB failed")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestWrapNilCause(t *testing.T) {
	if w := dockerr.Wrap(dockerr.KindTool, nil, "never happened"); w != nil {
		t.Fatalf("expected nil, got %v", w)
	}
}

func TestIsKindTraversesChain(t *testing.T) {
	inner := dockerr.Tool("obabel exited with status 1")
	outer := fmt.Errorf("prepare ligand: %w", inner)
	assert.True(t, dockerr.IsKind(outer, dockerr.KindTool))
	assert.False(t, dockerr.IsKind(outer, dockerr.KindParse))
	assert.False(t, dockerr.IsKind(nil, dockerr.KindTool))
}

func TestAsError(t *testing.T) {
	err := fmt.Errorf("dock: %w", dockerr.Integrity("cannot recover original ligand"))
	de := dockerr.AsError(err)
	require.NotNil(t, de)
	assert.Equal(t, dockerr.KindIntegrity, de.Kind)
	assert.Nil(t, dockerr.AsError(errors.New("plain")))
}
