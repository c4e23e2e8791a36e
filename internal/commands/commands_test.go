package commands

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/campaignlens/internal/config"
	"github.com/dwsmith1983/campaignlens/internal/provider/csvdir"
	"github.com/dwsmith1983/campaignlens/internal/testutil"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

func newTestRoot() *cobra.Command {
	root := &cobra.Command{Use: "campaignlens", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String(DirFlag, ".", "Project directory")
	root.AddCommand(
		NewInitCmd(),
		NewGenerateCmd(),
		NewOptionsCmd(),
		NewReportCmd(),
		NewExportCmd(),
	)
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newTestRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// scenarioProject writes the scenario dataset as CSV plus a config pointing at it.
func scenarioProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	src, err := csvdir.New(dataDir)
	require.NoError(t, err)
	require.NoError(t, src.Save(context.Background(), testutil.ScenarioDataset()))

	cfg := config.Default()
	cfg.Source.Type = types.SourceCSV
	cfg.Source.CSV.Dir = dataDir
	cfg.Log.Level = "error"
	_, err = config.Write(dir, cfg, false)
	require.NoError(t, err)
	return dir
}

func TestInit_Sample(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	out, err := execute(t, "init", dir, "--sample", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Config written")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, types.SourceCSV, cfg.Source.Type)
	assert.Equal(t, uint64(7), cfg.Source.Synthetic.Seed)
	for _, name := range csvdir.Files {
		assert.FileExists(t, filepath.Join(dir, sampleDataDir, name))
	}

	_, err = execute(t, "init", dir)
	assert.Error(t, err, "existing config without --force")
}

func TestGenerate_Out(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "generate", "--out", dir, "--seed", "3", "--influencers", "5", "--posts", "10", "--events", "12", "--anchor", "2026-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "5 influencers, 10 posts, 12 events")

	src, err := csvdir.New(dir)
	require.NoError(t, err)
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Tracking, 12)
}

func TestGenerate_SeedsSQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Source.Type = types.SourceSQLite
	cfg.Source.SQLite.Path = filepath.Join(dir, "campaignlens.db")
	cfg.Log.Level = "error"
	_, err := config.Write(dir, cfg, false)
	require.NoError(t, err)

	out, err := execute(t, "generate", "--dir", dir, "--anchor", "2026-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded sqlite")

	out, err = execute(t, "options", "--dir", dir, "--json")
	require.NoError(t, err)
	var opts types.Options
	require.NoError(t, json.Unmarshal([]byte(out), &opts))
	assert.NotEmpty(t, opts.Platforms)
}

func TestGenerate_SyntheticSourceRefused(t *testing.T) {
	_, err := execute(t, "generate", "--dir", t.TempDir())
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	dir := scenarioProject(t)
	out, err := execute(t, "options", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Instagram")
	assert.Contains(t, out, "MuscleBlaze")
	assert.Contains(t, out, "posts=1 tracking=1 payouts=0")
}

func TestReport_JSON(t *testing.T) {
	dir := scenarioProject(t)

	out, err := execute(t, "report", "--dir", dir, "--format", "json")
	require.NoError(t, err)
	var rep types.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, types.AmountFromFloat(780), rep.KPIs.TotalRevenue)

	out, err = execute(t, "report", "--dir", dir, "--format", "json", "--platform", "Instagram")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, types.AmountFromFloat(580), rep.KPIs.TotalRevenue)

	out, err = execute(t, "report", "--dir", dir, "--format", "json", "--gender=")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Zero(t, rep.KPIs.TotalOrders)
}

func TestReport_CSV(t *testing.T) {
	dir := scenarioProject(t)
	out, err := execute(t, "report", "--dir", dir, "--format", "csv", "--table", "campaign_summary")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "campaign", records[0][0])

	_, err = execute(t, "report", "--dir", dir, "--format", "csv")
	assert.Error(t, err)
}

func TestReport_Terminal(t *testing.T) {
	dir := scenarioProject(t)
	out, err := execute(t, "report", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "₹780")
	assert.Contains(t, out, "Campaign Performance")
	assert.Contains(t, out, "Campaign_A")
	assert.Contains(t, out, "Payout Tracking")
}

func TestReport_UnknownTable(t *testing.T) {
	_, err := execute(t, "report", "--dir", scenarioProject(t), "--table", "nope")
	assert.ErrorIs(t, err, types.ErrUnknownTable)
}

func TestExport_File(t *testing.T) {
	dir := scenarioProject(t)
	path := filepath.Join(dir, "out.zip")
	_, err := execute(t, "export", "--dir", dir, "--out", path, "--product", "Gritzo")
	require.NoError(t, err)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()
	assert.Len(t, zr.File, len(types.Tables))
}

func TestExport_PublishToFileSink(t *testing.T) {
	dir := scenarioProject(t)
	sinkDir := filepath.Join(dir, "published")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	cfg.Export.Sinks = []types.SinkConfig{{Type: types.SinkFile, Dir: sinkDir}}
	_, err = config.Write(dir, cfg, true)
	require.NoError(t, err)

	out, err := execute(t, "export", "--dir", dir, "--publish")
	require.NoError(t, err)
	assert.Contains(t, out, "Published")

	entries, err := os.ReadDir(sinkDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "campaignlens_insights.zip")
}

func TestExport_PublishWithoutSinks(t *testing.T) {
	_, err := execute(t, "export", "--dir", scenarioProject(t), "--publish")
	assert.Error(t, err)
}
