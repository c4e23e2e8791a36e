package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/campaignlens/internal/config"
	"github.com/dwsmith1983/campaignlens/internal/provider/csvdir"
	"github.com/dwsmith1983/campaignlens/internal/provider/synthetic"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// sampleDataDir is where init --sample writes the entity CSVs.
const sampleDataDir = "data"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var (
		force  bool
		sample bool
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "init [project-dir]",
		Short: "Initialize a new campaignlens project",
		Long: `Writes a default campaignlens.yaml. With --sample, also writes a seeded
synthetic dataset as CSV files and points the config at them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force, sample, seed)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing campaignlens.yaml")
	cmd.Flags().BoolVar(&sample, "sample", false, "Write a synthetic sample dataset as CSV")
	cmd.Flags().Uint64Var(&seed, "seed", synthetic.DefaultSeed, "Seed for the sample dataset")
	return cmd
}

func runInit(cmd *cobra.Command, dir string, force, sample bool, seed uint64) error {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(out, "Initializing campaignlens project in %s\n", dir)

	cfg := config.Default()
	cfg.Source.Synthetic.Seed = seed
	if sample {
		dataDir := filepath.Join(dir, sampleDataDir)
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dataDir, err)
		}
		ds, err := synthetic.New(cfg.Source.Synthetic).Generate()
		if err != nil {
			return fmt.Errorf("generating sample data: %w", err)
		}
		src, err := csvdir.New(dataDir)
		if err != nil {
			return err
		}
		if err := src.Save(context.Background(), ds); err != nil {
			return fmt.Errorf("writing sample data: %w", err)
		}
		cfg.Source.Type = types.SourceCSV
		cfg.Source.CSV.Dir = sampleDataDir
		_, _ = fmt.Fprintln(out, color.GreenString("  ✓ Sample dataset written to %s", dataDir))
	}

	path, err := config.Write(dir, cfg, force)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, color.GreenString("  ✓ Config written to %s", path))

	_, _ = fmt.Fprintln(out)
	_, _ = bold.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintf(out, "  cd %s\n", dir)
	_, _ = fmt.Fprintln(out, "  campaignlens report")
	_, _ = fmt.Fprintln(out, "  campaignlens serve")
	return nil
}
