// godock is a command-line front end for the docking workflow:
// prepare ligands from SMILES, dock them against named targets and
// inspect engine output files.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"godock/config"
	"godock/docking"
	"godock/obabel"
	"godock/vina"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var (
	cfgFile  string
	logLevel string
	verbose  bool
)

func main() {
	root := &cobra.Command{
		Use:           "godock",
		Short:         "Molecular docking workflow around Open Babel and AutoDock Vina",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging (shorthand for --log-level debug)")

	root.AddCommand(dockCmd(), prepareCmd(), scoresCmd(), targetsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "godock:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger the subcommands
// share.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := cfg.BuildLogger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// resolveVina picks the docking engine binary: the configured path if
// set, otherwise the platform binary name looked up on PATH.
func resolveVina(cfg *config.Config) (string, error) {
	if cfg.Vina.Bin != "" {
		return cfg.Vina.Bin, nil
	}
	name, err := vina.BinaryName()
	if err != nil {
		return "", err
	}
	return exec.LookPath(name)
}

func dockCmd() *cobra.Command {
	var (
		target string
		smiles string
		seed   int
	)
	cmd := &cobra.Command{
		Use:   "dock",
		Short: "Dock a SMILES ligand against a target and print the pose scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			tgt, err := docking.Load(cfg.TargetsDir, target)
			if err != nil {
				return err
			}
			vinaBin, err := resolveVina(cfg)
			if err != nil {
				return err
			}
			ob := obabel.NewRunner(cfg.Obabel.Bin, cfg.ToolTimeout, logger)
			engine := vina.New(vinaBin, cfg.ToolTimeout, logger)
			docker := docking.NewDocker(ob, engine, cfg.WorkDir, logger)

			res, err := docker.Dock(cmd.Context(), tgt, smiles, docking.Options{
				Seed:           seed,
				CPU:            cfg.Vina.CPU,
				Exhaustiveness: cfg.Vina.Exhaustiveness,
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s against %s\n", res.SMILES, tgt.Name)
			for i, s := range res.Scores {
				fmt.Printf("pose %2d  %8.3f kcal/mol\n", i+1, s)
			}
			fmt.Println("artifacts:", res.Dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "target name")
	cmd.Flags().StringVar(&smiles, "smiles", "", "ligand SMILES")
	cmd.Flags().IntVar(&seed, "seed", 0, "docking search seed")
	cmd.MarkFlagRequired("target")
	cmd.MarkFlagRequired("smiles")
	return cmd
}

func prepareCmd() *cobra.Command {
	var (
		smiles string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Run the ligand preparation pipeline only",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
				return err
			}
			dir, err := os.MkdirTemp(cfg.WorkDir, "prepare-")
			if err != nil {
				return err
			}

			ob := obabel.NewRunner(cfg.Obabel.Bin, cfg.ToolTimeout, logger)
			prep, err := docking.NewPipeline(ob, logger).Prepare(cmd.Context(), smiles, dir)
			if err != nil {
				return err
			}
			if out != "" {
				data, err := os.ReadFile(prep.MolFile)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
				prep.MolFile = out
			}
			fmt.Println("canonical: ", prep.SMILES)
			fmt.Println("protonated:", prep.ProtonatedSMILES)
			fmt.Println("structure: ", prep.MolFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&smiles, "smiles", "", "ligand SMILES")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the refined MOL file here")
	cmd.MarkFlagRequired("smiles")
	return cmd
}

func scoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scores FILE",
		Short: "Parse pose scores out of a docking output file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scores, err := vina.ParseScores(args[0])
			if err != nil {
				return err
			}
			if len(scores) == 0 {
				fmt.Println("no scores found")
				return nil
			}
			for i, s := range scores {
				fmt.Printf("pose %2d  %8.3f kcal/mol\n", i+1, s)
			}
			return nil
		},
	}
}

func targetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the targets available in the configured directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			names, err := docking.Targets(cfg.TargetsDir)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("no targets in", cfg.TargetsDir)
				return nil
			}
			for _, n := range names {
				fmt.Println(filepath.Base(n))
			}
			return nil
		},
	}
}
