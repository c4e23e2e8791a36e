package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/campaignlens/internal/export"
	"github.com/dwsmith1983/campaignlens/internal/report"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	var (
		tableName string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the campaign ROI report for a selection",
		Long: `Builds the report for the selected platforms, categories, genders and
products. A filter flag that is not given selects every observed value;
passing it empty (--category=) selects nothing.`,
		Args: cobra.NoArgs,
	}
	sel := addSelectionFlags(cmd)
	cmd.Flags().StringVar(&tableName, "table", "", "Only print this table (campaign_summary, top_influencers, ...)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json or csv")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runReport(cmd, sel, tableName, format)
	}
	return cmd
}

func runReport(cmd *cobra.Command, flags *selectionFlags, tableName, format string) error {
	tables := types.Tables
	if tableName != "" {
		t, err := types.ParseTableName(tableName)
		if err != nil {
			return fmt.Errorf("%w: %q", err, tableName)
		}
		tables = []types.TableName{t}
	}
	if format == "csv" && len(tables) != 1 {
		return fmt.Errorf("--format csv needs --table")
	}

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
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if tableName != "" {
			tbl, err := export.Raw(rep, tables[0])
			if err != nil {
				return err
			}
			return enc.Encode(tbl)
		}
		return enc.Encode(rep)
	case "csv":
		return export.WriteCSV(out, rep, tables[0])
	case "table":
		return printReport(out, rep, tables)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printReport(out io.Writer, rep types.Report, tables []types.TableName) error {
	k := export.DisplayKPIs(rep.KPIs)
	bold := color.New(color.Bold)
	_, _ = bold.Fprintln(out, "Influencer Campaign ROI")
	_, _ = fmt.Fprintf(out, "  Total Revenue %s   Total Orders %s   ROAS %s   ROI %s\n\n",
		color.GreenString(k.TotalRevenue), color.CyanString(k.TotalOrders),
		color.CyanString(k.ROAS), roiColor(rep.KPIs.ROIPercent)(k.ROIPercent))

	for _, t := range tables {
		tbl, err := export.Display(rep, t)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, renderTable(tableTitles[t], tbl))
	}
	return nil
}

func roiColor(v float64) func(string, ...interface{}) string {
	if v < 0 {
		return color.RedString
	}
	return color.GreenString
}
