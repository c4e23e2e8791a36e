package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/campaignlens/internal/provider/csvdir"
	"github.com/dwsmith1983/campaignlens/internal/provider/synthetic"
	"github.com/dwsmith1983/campaignlens/internal/sources"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var (
		outDir string
		gen    types.GeneratorConfig
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic dataset",
		Long: `Generates a seeded synthetic dataset. With --out the four entity CSVs are
written to that directory; otherwise the dataset is saved into the configured
source (csv, s3csv, postgres, sqlite or dynamodb).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, outDir, gen)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write entity CSVs to")
	cmd.Flags().Uint64Var(&gen.Seed, "seed", synthetic.DefaultSeed, "Random seed")
	cmd.Flags().IntVar(&gen.Influencers, "influencers", synthetic.DefaultInfluencers, "Number of influencers")
	cmd.Flags().IntVar(&gen.Posts, "posts", synthetic.DefaultPosts, "Number of posts")
	cmd.Flags().IntVar(&gen.Events, "events", synthetic.DefaultEvents, "Number of tracking events")
	cmd.Flags().StringVar(&gen.Anchor, "anchor", "", "Reference date, RFC3339 or YYYY-MM-DD (default: today)")
	return cmd
}

func runGenerate(cmd *cobra.Command, outDir string, gen types.GeneratorConfig) error {
	ds, err := synthetic.New(gen).Generate()
	if err != nil {
		return fmt.Errorf("generating dataset: %w", err)
	}
	ctx := context.Background()
	out := cmd.OutOrStdout()

	if outDir != "" {
		src, err := csvdir.New(outDir)
		if err != nil {
			return err
		}
		if err := src.Save(ctx, ds); err != nil {
			return fmt.Errorf("writing dataset: %w", err)
		}
		_, _ = fmt.Fprintln(out, color.GreenString("✓ Wrote %s to %s", summarize(ds), outDir))
		return nil
	}

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Source.Type == types.SourceSynthetic {
		return fmt.Errorf("configured source is synthetic; use --out or configure a persistent source")
	}
	src, err := sources.Open(ctx, cfg.Source, logger)
	if err != nil {
		return fmt.Errorf("opening %s source: %w", cfg.Source.Type, err)
	}
	defer src.Close()

	seeder, ok := src.Seeder()
	if !ok {
		return fmt.Errorf("%s source cannot be seeded", src.Backend.Name())
	}
	if err := src.Migrate(ctx); err != nil {
		return err
	}
	if err := seeder.Save(ctx, ds); err != nil {
		return fmt.Errorf("seeding %s: %w", src.Backend.Name(), err)
	}
	_, _ = fmt.Fprintln(out, color.GreenString("✓ Seeded %s with %s", src.Backend.Name(), summarize(ds)))
	return nil
}

func summarize(ds *types.Dataset) string {
	return fmt.Sprintf("%d influencers, %d posts, %d events, %d payout terms",
		len(ds.Influencers), len(ds.Posts), len(ds.Tracking), len(ds.Payouts))
}
