// Package commands implements the CLI subcommands for the campaignlens binary.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/campaignlens/internal/config"
	"github.com/dwsmith1983/campaignlens/internal/export"
	"github.com/dwsmith1983/campaignlens/internal/filter"
	"github.com/dwsmith1983/campaignlens/internal/sources"
	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/internal/telemetry"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// DirFlag is the persistent flag naming the project directory.
const DirFlag = "dir"

// loadConfig resolves campaignlens.yaml from the --dir project directory and
// installs the configured logger as the default.
func loadConfig(cmd *cobra.Command) (*types.ProjectConfig, *slog.Logger, error) {
	dir, err := cmd.Flags().GetString(DirFlag)
	if err != nil || dir == "" {
		dir = "."
	}
	cfg, err := config.Resolve(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := telemetry.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openSnapshot opens the configured source and loads one snapshot from it.
func openSnapshot(ctx context.Context, cfg *types.ProjectConfig, logger *slog.Logger) (*sources.Opened, *store.Snapshot, error) {
	src, err := sources.Open(ctx, cfg.Source, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s source: %w", cfg.Source.Type, err)
	}
	snap, err := sources.Load(ctx, src.Source, sources.Timeout(cfg.Source), logger)
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return src, snap, nil
}

// selectionFlags binds one repeatable flag per filter dimension.
type selectionFlags struct {
	values map[types.Dimension]*[]string
}

func addSelectionFlags(cmd *cobra.Command) *selectionFlags {
	f := &selectionFlags{values: make(map[types.Dimension]*[]string)}
	for _, d := range types.Dimensions {
		v := new([]string)
		f.values[d] = v
		cmd.Flags().StringSliceVar(v, string(d), nil,
			fmt.Sprintf("%s values to include (repeatable, comma-separated; omit for all)", d))
	}
	return f
}

// resolve builds the selection: a flag that was not given selects every
// observed value, a flag given empty selects nothing.
func (f *selectionFlags) resolve(cmd *cobra.Command, opts types.Options) types.Selection {
	return filter.Resolve(opts, func(d types.Dimension) ([]string, bool) {
		if !cmd.Flags().Changed(string(d)) {
			return nil, false
		}
		return *f.values[d], true
	})
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderTable draws t as a bordered terminal table under a title.
func renderTable(title string, t export.Table) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	if len(t.Rows) == 0 {
		sb.WriteString(mutedStyle.Render("  (no rows)"))
		sb.WriteString("\n")
		return sb.String()
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(t.Columns...).
		Rows(t.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	sb.WriteString(tbl.String())
	sb.WriteString("\n")
	return sb.String()
}

// tableTitles are the section headings of the terminal report.
var tableTitles = map[types.TableName]string{
	types.TableCampaignSummary:   "Campaign Performance",
	types.TableTopInfluencers:    "Top Influencers by ROAS",
	types.TableBottomInfluencers: "Bottom Influencers by ROAS",
	types.TablePersonaSummary:    "Best Performing Personas",
	types.TablePostEngagement:    "Post Engagement Overview",
	types.TablePayoutSummary:     "Payout Tracking",
}
