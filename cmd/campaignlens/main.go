package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/campaignlens/internal/commands"
)

var version = "dev"

func main() {
	// Optional; real environment variables win over .env entries.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "campaignlens",
		Short: "Influencer campaign ROI reporting",
		Long: `campaignlens joins influencer profiles, posts, tracked conversions and
payout terms into campaign ROI reports: headline KPIs, campaign and persona
breakdowns, influencer ROAS rankings, engagement and payout tracking. Reports
are served over HTTP, printed to the terminal or exported as CSV.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().String(commands.DirFlag, ".", "Project directory holding campaignlens.yaml")

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewGenerateCmd(),
		commands.NewOptionsCmd(),
		commands.NewReportCmd(),
		commands.NewExportCmd(),
		commands.NewServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
