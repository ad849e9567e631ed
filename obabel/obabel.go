// Package obabel wraps the Open Babel command-line binary: format
// conversion, protonation and the delegated 3D steps (structure
// generation and force-field minimization).
//
// Every invocation builds an argv list (never a shell string) and runs
// under the caller's context plus a configurable timeout. Exit status
// is the success signal; combined output is kept for error messages
// and logged at debug level.
package obabel

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"godock/dockerr"
)

// DefaultBinary is the conventional Open Babel executable name.
const DefaultBinary = "obabel"

// protonationPH is the fixed pH used for protonation, matching the
// physiological pH the docking workflow targets.
const protonationPH = "7.4"

// ErrForceFieldSetup marks a minimization failure caused by the force
// field being unable to parameterize or perceive the molecule, as
// opposed to a crash or a timeout. The refinement fallback keys on it.
var ErrForceFieldSetup = errors.New("force field setup failed")

// Runner invokes the Open Babel binary.
type Runner struct {
	bin     string
	timeout time.Duration
	log     *zap.Logger
}

// NewRunner builds a Runner. An empty bin falls back to DefaultBinary,
// a zero timeout disables the per-call deadline, a nil logger is
// replaced with a nop logger.
func NewRunner(bin string, timeout time.Duration, log *zap.Logger) *Runner {
	if bin == "" {
		bin = DefaultBinary
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{bin: bin, timeout: timeout, log: log}
}

// run executes obabel with the given arguments, returning stdout and
// combined output separately.
func (r *Runner) run(ctx context.Context, args ...string) (stdout, combined string, err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.bin, args...)
	var out, all bytes.Buffer
	cmd.Stdout = newTee(&out, &all)
	cmd.Stderr = &all
	err = cmd.Run()

	combined = all.String()
	r.log.Debug("obabel", zap.Strings("args", args), zap.String("output", combined))

	if ctx.Err() != nil {
		return "", combined, dockerr.Wrap(dockerr.KindTool, ctx.Err(), "obabel timed out")
	}
	return out.String(), combined, err
}

type tee struct{ a, b *bytes.Buffer }

func newTee(a, b *bytes.Buffer) *tee { return &tee{a, b} }

func (t *tee) Write(p []byte) (int, error) {
	t.a.Write(p)
	return t.b.Write(p)
}

// ConvertPDBQTToPDB converts a PDBQT file to PDB. With disableBonding
// set, Open Babel's automatic bond perception is turned off (read
// option "b"), which keeps docked poses from growing spurious bonds.
func (r *Runner) ConvertPDBQTToPDB(ctx context.Context, src, dst string, disableBonding bool) error {
	args := []string{"-ipdbqt", src, "-opdb", "-O", dst}
	if disableBonding {
		args = append(args, "-ab")
	}
	_, combined, err := r.run(ctx, args...)
	if err != nil {
		return dockerr.Wrap(dockerr.KindTool, err, "conversion from PDBQT to PDB failed: %s", strings.TrimSpace(combined))
	}
	return nil
}

// ConvertMolToPDBQT converts an MDL MOL file to PDBQT with Gasteiger
// partial charges, the input format the docking engine expects.
func (r *Runner) ConvertMolToPDBQT(ctx context.Context, src, dst string) error {
	_, combined, err := r.run(ctx,
		"-imol", src,
		"-opdbqt", "-O", dst,
		"--partialcharge", "gasteiger",
	)
	if err != nil {
		return dockerr.Wrap(dockerr.KindTool, err, "conversion from MOL to PDBQT failed: %s", strings.TrimSpace(combined))
	}
	return nil
}

// ProtonateSMILES protonates a SMILES string at pH 7.4 and returns the
// trimmed canonical SMILES Open Babel prints to stdout. The payload is
// passed as a single argv element.
func (r *Runner) ProtonateSMILES(ctx context.Context, smiles string) (string, error) {
	stdout, combined, err := r.run(ctx,
		"-:"+smiles,
		"-ismi",
		"-ocan",
		"-p"+protonationPH,
	)
	if err != nil {
		return "", dockerr.Wrap(dockerr.KindTool, err, "ligand protonation failed: %s", strings.TrimSpace(combined))
	}
	out := strings.TrimSpace(stdout)
	if out == "" {
		return "", dockerr.Tool("ligand protonation produced no output: %s", strings.TrimSpace(combined))
	}
	// Open Babel may append a title column; the SMILES is the first field.
	return strings.Fields(out)[0], nil
}

// Gen3D builds a 3D structure for a SMILES string and writes it as an
// MDL MOL file, hydrogens included.
func (r *Runner) Gen3D(ctx context.Context, smiles, dst string) error {
	_, combined, err := r.run(ctx,
		"-:"+smiles,
		"-ismi",
		"-omol", "-O", dst,
		"-h",
		"--gen3d",
	)
	if err != nil {
		return dockerr.Wrap(dockerr.KindTool, err, "3D structure generation failed: %s", strings.TrimSpace(combined))
	}
	if strings.Contains(combined, "0 molecules converted") {
		return dockerr.Tool("3D structure generation produced no structure: %s", strings.TrimSpace(combined))
	}
	return nil
}

// Minimize runs steepest-descent force-field minimization on a MOL
// file. A failure to set up or parameterize the force field is
// reported with ErrForceFieldSetup in the chain so that callers can
// fall back to a more permissive force field.
func (r *Runner) Minimize(ctx context.Context, src, dst, forceField string, steps int) error {
	_, combined, err := r.run(ctx,
		"-imol", src,
		"-omol", "-O", dst,
		"--minimize",
		"--ff", forceField,
		"--steps", strconv.Itoa(steps),
		"--sd",
	)
	if err != nil || strings.Contains(combined, "0 molecules converted") {
		if isSetupFailure(combined) {
			return dockerr.Wrap(dockerr.KindTool, ErrForceFieldSetup,
				"%s minimization failed: %s", forceField, strings.TrimSpace(combined))
		}
		if err == nil {
			err = errors.New("no molecules converted")
		}
		return dockerr.Wrap(dockerr.KindTool, err, "%s minimization failed: %s", forceField, strings.TrimSpace(combined))
	}
	if isSetupFailure(combined) {
		return dockerr.Wrap(dockerr.KindTool, ErrForceFieldSetup,
			"%s minimization failed: %s", forceField, strings.TrimSpace(combined))
	}
	return nil
}

func isSetupFailure(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "could not setup force field") ||
		strings.Contains(lower, "could not find parameters") ||
		strings.Contains(lower, "kekulize")
}
