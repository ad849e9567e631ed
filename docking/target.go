package docking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"godock/chem"
	"godock/dockerr"
	"godock/obabel"
	"godock/vina"
)

const (
	receptorSuffix = "_receptor.pdbqt"
	confSuffix     = "_conf.txt"
)

// Target is a named receptor: its rigid PDBQT structure and the
// search-box configuration of its binding site.
type Target struct {
	Name      string
	Receptor  string
	ConfFile  string
	SearchBox map[string]float64
}

// Targets lists the target names available under dir, sorted.
func Targets(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+receptorSuffix))
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot list targets in %s", dir)
	}
	var names []string
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), receptorSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// Load resolves a target by name under dir, checking both files exist
// and parsing the search box.
func Load(dir, name string) (*Target, error) {
	t := &Target{
		Name:     name,
		Receptor: filepath.Join(dir, name+receptorSuffix),
		ConfFile: filepath.Join(dir, name+confSuffix),
	}
	if _, err := os.Stat(t.Receptor); err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "target %q has no receptor file", name)
	}
	box, err := vina.ParseSearchBox(t.ConfFile)
	if err != nil {
		return nil, err
	}
	t.SearchBox = box
	return t, nil
}

// Options are the tunables of a docking run.
type Options struct {
	Seed           int
	CPU            int
	Exhaustiveness int
}

// Result is a completed docking run.
type Result struct {
	// SMILES is the canonical form of the docked ligand.
	SMILES string
	// Scores are the per-pose binding affinities in engine order,
	// best pose first.
	Scores []float64
	// Pose is the top-ranked docked structure with bond orders and
	// stereochemistry restored.
	Pose *chem.Molecule
	// Dir holds the run artifacts.
	Dir string
	// PosesFile is the raw multi-pose PDBQT output.
	PosesFile string
}

// Docker runs the full docking flow against loaded targets.
type Docker struct {
	pipeline *Pipeline
	ob       *obabel.Runner
	engine   *vina.Vina
	workDir  string
	log      *zap.Logger
}

// NewDocker wires a Docker from its tool adapters. Artifacts land in
// per-ligand directories under workDir.
func NewDocker(ob *obabel.Runner, engine *vina.Vina, workDir string, log *zap.Logger) *Docker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Docker{
		pipeline: NewPipeline(ob, log),
		ob:       ob,
		engine:   engine,
		workDir:  workDir,
		log:      log,
	}
}

// Dock docks a SMILES ligand against the target. Finished artifacts in
// the ligand's work directory are reused, so re-running the same
// ligand skips preparation and the search.
func (d *Docker) Dock(ctx context.Context, t *Target, smiles string, opts Options) (*Result, error) {
	canonical, err := chem.Canonicalize(smiles)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(d.workDir, t.Name, ligandKey(canonical))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dockerr.Wrap(dockerr.KindTool, err, "cannot create work dir %s", dir)
	}
	log := d.log.With(zap.String("target", t.Name), zap.String("smiles", canonical))

	refFile := filepath.Join(dir, "ligand.mol")
	var ref *chem.Molecule
	if exists(refFile) {
		ref, err = chem.ReadMolFile(refFile)
		if err != nil {
			return nil, err
		}
		log.Debug("reusing prepared ligand", zap.String("file", refFile))
	} else {
		prep, err := d.pipeline.Prepare(ctx, canonical, dir)
		if err != nil {
			return nil, err
		}
		ref = prep.Mol
	}

	ligandFile := filepath.Join(dir, "ligand.pdbqt")
	if !exists(ligandFile) {
		if err := d.ob.ConvertMolToPDBQT(ctx, refFile, ligandFile); err != nil {
			return nil, err
		}
	}

	posesFile := filepath.Join(dir, "poses.pdbqt")
	logFile := filepath.Join(dir, "vina.log")
	if !exists(posesFile) {
		err := d.engine.Run(ctx, t.Receptor, ligandFile, t.ConfFile, posesFile, logFile, vina.RunOptions{
			Seed:           opts.Seed,
			CPU:            opts.CPU,
			Exhaustiveness: opts.Exhaustiveness,
		})
		if err != nil {
			return nil, err
		}
	} else {
		log.Debug("reusing docking output", zap.String("file", posesFile))
	}
	if err := vina.CheckOutput(posesFile); err != nil {
		return nil, err
	}
	scores, err := vina.ParseScores(posesFile)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, dockerr.Tool("docking output %s contains no scores", posesFile)
	}

	poseFile := filepath.Join(dir, "poses.pdb")
	if err := d.ob.ConvertPDBQTToPDB(ctx, posesFile, poseFile, true); err != nil {
		return nil, err
	}
	pose, err := d.recoverPose(poseFile, ref)
	if err != nil {
		return nil, err
	}
	if err := VerifyDockedLigand(ref, pose); err != nil {
		return nil, err
	}
	log.Debug("docking finished", zap.Float64("best", scores[0]), zap.Int("poses", len(scores)))

	return &Result{
		SMILES:    canonical,
		Scores:    scores,
		Pose:      pose,
		Dir:       dir,
		PosesFile: posesFile,
	}, nil
}

// recoverPose rebuilds a chemically meaningful molecule from the
// bond-order-naive PDB pose: heavy atoms only, orders and charges from
// the prepared template, stereocenters from the docked geometry. Only
// the first (top-ranked) model of the multi-pose file is read.
func (d *Docker) recoverPose(poseFile string, ref *chem.Molecule) (*chem.Molecule, error) {
	data, err := os.ReadFile(poseFile)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot read pose file %s", poseFile)
	}
	text := string(data)
	if i := strings.Index(text, "ENDMDL"); i >= 0 {
		text = text[:i]
	}
	raw, err := chem.ParsePDB(text)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot read pose file %s", poseFile)
	}
	pose := chem.RemoveHs(raw)
	pose, err = chem.AssignBondOrders(pose, chem.RemoveHs(ref))
	if err != nil {
		return nil, err
	}
	chem.AssignStereochemistryFrom3D(pose)
	return pose, nil
}

// VerifyDockedLigand checks that the docked pose is still the molecule
// that was prepared, by canonical-SMILES equality on the heavy-atom
// graphs. Stereocenters count: a pose that comes back as the
// enantiomer of the prepared ligand fails the check.
func VerifyDockedLigand(ref, docked *chem.Molecule) error {
	want := heavyCanonical(ref)
	got := heavyCanonical(docked)
	if want != got {
		return dockerr.Integrity("docked ligand %q does not match prepared ligand %q", got, want)
	}
	return nil
}

// heavyCanonical strips explicit hydrogens and, when a conformer is
// present, rederives tetrahedral parities from it before serializing.
func heavyCanonical(m *chem.Molecule) string {
	h := chem.RemoveHs(m)
	if h.HasConformer() {
		chem.AssignStereochemistryFrom3D(h)
	}
	return chem.CanonicalSMILES(h)
}

// ligandKey derives a stable directory name for a ligand from its
// canonical SMILES.
func ligandKey(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:16]
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
