// Package docking drives the ligand preparation pipeline and the
// docking run itself: SMILES in, per-pose scores and a verified pose
// molecule out.
package docking

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"godock/chem"
	"godock/dockerr"
	"godock/obabel"
)

// refineSteps is the step budget for each force-field minimization.
const refineSteps = 500

// Prepared is a docking-ready ligand: protonated, embedded in 3D and
// force-field refined.
type Prepared struct {
	// SMILES is the canonical form of the input, before protonation.
	SMILES string
	// ProtonatedSMILES is the pH-adjusted form actually embedded.
	ProtonatedSMILES string
	// Mol is the refined 3D structure, hydrogens included.
	Mol *chem.Molecule
	// MolFile is the path of the refined MDL MOL artifact.
	MolFile string
}

// Pipeline prepares ligands for docking.
type Pipeline struct {
	ob  *obabel.Runner
	log *zap.Logger
}

// NewPipeline builds a Pipeline. A nil logger is replaced with a nop
// logger.
func NewPipeline(ob *obabel.Runner, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{ob: ob, log: log}
}

// Prepare turns a SMILES string into a refined 3D ligand under dir.
// Each stage fails fast: canonicalize, parse, neutralize charges,
// structural checks, protonation at physiological pH, 3D embedding
// and force-field refinement.
func (p *Pipeline) Prepare(ctx context.Context, smiles, dir string) (*Prepared, error) {
	canonical, err := chem.Canonicalize(smiles)
	if err != nil {
		return nil, err
	}
	mol, err := chem.ParseSMILES(canonical)
	if err != nil {
		return nil, err
	}
	mol = chem.Uncharge(mol)
	if err := chem.CheckMol(mol); err != nil {
		return nil, err
	}

	protonated, err := p.ob.ProtonateSMILES(ctx, chem.CanonicalSMILES(mol))
	if err != nil {
		return nil, err
	}
	protMol, err := chem.ParseSMILES(protonated)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err,
			"cannot read protonated SMILES %q", protonated)
	}
	if err := chem.CheckMol(protMol); err != nil {
		return nil, err
	}
	p.log.Debug("ligand protonated",
		zap.String("smiles", canonical),
		zap.String("protonated", protonated))

	embedded := filepath.Join(dir, "ligand_embedded.mol")
	if err := p.ob.Gen3D(ctx, protonated, embedded); err != nil {
		return nil, err
	}
	em, err := chem.ReadMolFile(embedded)
	if err != nil {
		return nil, err
	}
	if !em.HasConformer() {
		return nil, dockerr.Tool("ligand embedding failed for %q", protonated)
	}

	refined := filepath.Join(dir, "ligand.mol")
	if err := p.refine(ctx, embedded, refined); err != nil {
		return nil, err
	}
	rm, err := chem.ReadMolFile(refined)
	if err != nil {
		return nil, err
	}
	if !rm.HasConformer() {
		return nil, dockerr.Tool("ligand refinement lost the conformer for %q", protonated)
	}

	return &Prepared{
		SMILES:           canonical,
		ProtonatedSMILES: protonated,
		Mol:              rm,
		MolFile:          refined,
	}, nil
}

// refine minimizes with MMFF94 and falls back to UFF only when MMFF94
// cannot set up the molecule (missing parameters, kekulization). Any
// other MMFF94 failure propagates.
func (p *Pipeline) refine(ctx context.Context, src, dst string) error {
	err := p.ob.Minimize(ctx, src, dst, "MMFF94", refineSteps)
	if err == nil {
		return nil
	}
	if !errors.Is(err, obabel.ErrForceFieldSetup) {
		return err
	}
	p.log.Debug("MMFF94 setup failed, retrying with UFF", zap.Error(err))
	return p.ob.Minimize(ctx, src, dst, "UFF", refineSteps)
}
