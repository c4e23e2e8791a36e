package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// NewOptionsCmd creates the options command.
func NewOptionsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the filter values observed in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOptions(cmd, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func runOptions(cmd *cobra.Command, asJSON bool) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, snap, err := openSnapshot(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	out := cmd.OutOrStdout()
	opts := snap.Options()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(opts)
	}

	bold := color.New(color.Bold)
	sel := opts.Selection()
	for _, d := range types.Dimensions {
		_, _ = bold.Fprintf(out, "%-9s ", d)
		_, _ = fmt.Fprintln(out, strings.Join(sel.Values(d), ", "))
	}

	if gaps := snap.Gaps(); gaps.Posts+gaps.Tracking+gaps.Payouts > 0 {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, color.YellowString("⚠ rows referencing unknown influencers: posts=%d tracking=%d payouts=%d",
			gaps.Posts, gaps.Tracking, gaps.Payouts))
	}
	return nil
}
