package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/campaignlens/internal/metrics"
	"github.com/dwsmith1983/campaignlens/internal/publish"
	"github.com/dwsmith1983/campaignlens/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	var (
		outPath    string
		publishOut bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every report table as a ZIP of CSV files",
		Long: `Builds the report for the selection and bundles all six tables as CSV in a
ZIP. The ZIP is written to --out and, with --publish, delivered to the sinks
configured under export.sinks.`,
		Args: cobra.NoArgs,
	}
	sel := addSelectionFlags(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "ZIP file to write (default: campaignlens_insights.zip unless --publish)")
	cmd.Flags().BoolVar(&publishOut, "publish", false, "Deliver the ZIP to the configured export sinks")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runExport(cmd, sel, outPath, publishOut)
	}
	return cmd
}

func runExport(cmd *cobra.Command, flags *selectionFlags, outPath string, publishOut bool) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	src, snap, err := openSnapshot(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	rep := report.Build(ctx, snap, flags.resolve(cmd, snap.Options()))
	b, err := publish.NewBundle(rep, cfg.Export.FileName, time.Now())
	if err != nil {
		return err
	}
	metrics.ExportsBuilt.Inc(ctx)
	out := cmd.OutOrStdout()

	if outPath == "" && !publishOut {
		outPath = b.FileName
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, b.Data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		_, _ = fmt.Fprintln(out, color.GreenString("✓ Wrote %s (%d bytes)", outPath, b.Size))
	}

	if !publishOut {
		return nil
	}
	if len(cfg.Export.Sinks) == 0 {
		return fmt.Errorf("--publish needs at least one entry under export.sinks")
	}
	d, err := publish.NewDispatcher(ctx, cfg.Export.Sinks, publish.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating export dispatcher: %w", err)
	}
	if err := d.Dispatch(ctx, b); err != nil {
		_, _ = fmt.Fprintln(out, color.RedString("✗ Publish incomplete for %s", b.ID))
		return err
	}
	_, _ = fmt.Fprintln(out, color.GreenString("✓ Published %s", b.ID))
	for _, loc := range b.Locations {
		_, _ = fmt.Fprintf(out, "  %s\n", loc)
	}
	return nil
}
