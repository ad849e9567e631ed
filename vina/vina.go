// Package vina wraps the AutoDock Vina docking engine: locating the
// OS-specific binary, running a docking search, and parsing the plain
// text artifacts it consumes and produces (search-box configuration
// and per-pose score remarks).
package vina

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"godock/dockerr"
)

// realNumber matches an optionally signed real with optional decimal
// point and exponent.
const realNumber = `[-+]?[0-9]*\.?[0-9]+(?:e[-+]?[0-9]+)?`

var (
	scoreRe = regexp.MustCompile(`REMARK VINA RESULT:\s*(` + realNumber + `)`)
	confRe  = regexp.MustCompile(`^(\w+)\s*=\s*(` + realNumber + `)\s*$`)
)

// searchBoxKeys is the number of entries a search-box configuration
// must define: center and size along three axes.
const searchBoxKeys = 6

// BinaryName returns the platform-specific Vina executable name.
func BinaryName() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "vina_linux", nil
	default:
		return "", dockerr.Tool("system %q not yet supported", runtime.GOOS)
	}
}

// Find resolves the Vina executable inside binDir.
func Find(binDir string) (string, error) {
	name, err := BinaryName()
	if err != nil {
		return "", err
	}
	path := filepath.Join(binDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", dockerr.Tool("AutoDock Vina executable not found at %s", path)
	}
	return path, nil
}

// Vina invokes the docking engine binary.
type Vina struct {
	bin     string
	timeout time.Duration
	log     *zap.Logger
}

// New builds a Vina runner. A zero timeout disables the per-call
// deadline; a nil logger is replaced with a nop logger.
func New(bin string, timeout time.Duration, log *zap.Logger) *Vina {
	if log == nil {
		log = zap.NewNop()
	}
	return &Vina{bin: bin, timeout: timeout, log: log}
}

// RunOptions carries the tunables of a docking search.
type RunOptions struct {
	Seed           int
	CPU            int
	Exhaustiveness int
}

// Run docks a prepared PDBQT ligand against a receptor using the
// search box in confFile, writing poses to outFile and the engine log
// to logFile. The seed makes the search reproducible.
func (v *Vina) Run(ctx context.Context, receptor, ligand, confFile, outFile, logFile string, opts RunOptions) error {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	args := []string{
		"--receptor", receptor,
		"--ligand", ligand,
		"--config", confFile,
		"--out", outFile,
		"--seed", strconv.Itoa(opts.Seed),
	}
	if logFile != "" {
		args = append(args, "--log", logFile)
	}
	if opts.CPU > 0 {
		args = append(args, "--cpu", strconv.Itoa(opts.CPU))
	}
	if opts.Exhaustiveness > 0 {
		args = append(args, "--exhaustiveness", strconv.Itoa(opts.Exhaustiveness))
	}

	cmd := exec.CommandContext(ctx, v.bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	v.log.Debug("vina", zap.Strings("args", args), zap.String("output", out.String()))

	if ctx.Err() != nil {
		return dockerr.Wrap(dockerr.KindTool, ctx.Err(), "docking run timed out")
	}
	if err != nil {
		return dockerr.Wrap(dockerr.KindTool, err, "docking run failed: %s", strings.TrimSpace(out.String()))
	}
	return nil
}

// ParseScores extracts every pose score from a Vina output file, in
// file order. A file without score remarks yields an empty slice, not
// an error; emptiness is judged by the caller.
func ParseScores(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot read docking output %s", path)
	}
	var scores []float64
	for _, m := range scoreRe.FindAllStringSubmatch(string(data), -1) {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, dockerr.Wrap(dockerr.KindParse, err, "bad score %q in %s", m[1], path)
		}
		scores = append(scores, f)
	}
	return scores, nil
}

// ParseSearchBox reads a search-box configuration: one "key = value"
// per line, unrecognized lines skipped. Exactly six entries (center
// and size per axis) must result.
func ParseSearchBox(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dockerr.Wrap(dockerr.KindParse, err, "cannot read search box config %s", path)
	}
	conf := make(map[string]float64)
	for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		m := confRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		f, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, dockerr.Wrap(dockerr.KindParse, err, "bad value %q in %s", m[2], path)
		}
		conf[m[1]] = f
	}
	if len(conf) != searchBoxKeys {
		return nil, dockerr.Parse("search box config %s defines %d keys, want %d", path, len(conf), searchBoxKeys)
	}
	return conf, nil
}

// CheckOutput fails when the docking output file is empty, which is
// how Vina signals that no appropriate pose was found.
func CheckOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return dockerr.Wrap(dockerr.KindTool, err, "docking output missing")
	}
	if info.Size() == 0 {
		return dockerr.Tool("AutoDock Vina could not find any appropriate pose")
	}
	return nil
}
