package server_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/campaignlens/internal/cache"
	"github.com/dwsmith1983/campaignlens/internal/export"
	"github.com/dwsmith1983/campaignlens/internal/publish"
	"github.com/dwsmith1983/campaignlens/internal/server"
	"github.com/dwsmith1983/campaignlens/internal/server/handlers"
	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/internal/testutil"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

type stubSink struct {
	err   error
	calls int
}

func (s *stubSink) Name() string { return "stub" }

func (s *stubSink) Send(_ context.Context, b *publish.Bundle) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	b.Locations = append(b.Locations, "stub://"+b.ID)
	return nil
}

type fixture struct {
	ts     *httptest.Server
	source *testutil.MockSource
	sink   *stubSink
}

func setupTestServer(t *testing.T, mutate ...func(*types.ServerConfig, *handlers.Deps)) *fixture {
	t.Helper()
	src := testutil.NewMockSource(testutil.ScenarioDataset())
	sink := &stubSink{}
	pub, err := publish.NewDispatcher(context.Background(), nil)
	require.NoError(t, err)
	pub.Add(types.SinkS3, sink)

	cfg := types.ServerConfig{Addr: ":0"}
	deps := handlers.Deps{
		Snapshot:  testutil.ScenarioSnapshot(t),
		Source:    src,
		Reports:   cache.New(cache.NewMemory(0)),
		Publisher: pub,
		Reload: func(ctx context.Context) (*store.Snapshot, error) {
			ds, err := src.Load(ctx)
			if err != nil {
				return nil, err
			}
			return store.New(ds)
		},
		Now: func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) },
	}
	for _, m := range mutate {
		m(&cfg, &deps)
	}

	ts := httptest.NewServer(server.New(cfg, deps).Handler())
	t.Cleanup(ts.Close)
	return &fixture{ts: ts, source: src, sink: sink}
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthEndpoint(t *testing.T) {
	f := setupTestServer(t)

	resp := get(t, f.ts.URL+"/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get(server.RequestIDHeader), 26)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["datasetVersion"])
}

func TestHealthEndpoint_Degraded(t *testing.T) {
	f := setupTestServer(t)
	f.source.SetPingError(errors.New("connection refused"))

	body := decode[map[string]string](t, get(t, f.ts.URL+"/api/health"))
	assert.Equal(t, "degraded", body["status"])
}

func TestOptionsEndpoint(t *testing.T) {
	f := setupTestServer(t)

	opts := decode[types.Options](t, get(t, f.ts.URL+"/api/options"))
	assert.ElementsMatch(t, []string{"Instagram", "YouTube", "Twitter"}, opts.Platforms)
	assert.ElementsMatch(t, []string{"MuscleBlaze", "HKVitals", "Gritzo"}, opts.Products)
}

func TestReportEndpoint(t *testing.T) {
	f := setupTestServer(t)

	t.Run("all values when no filter given", func(t *testing.T) {
		rep := decode[types.Report](t, get(t, f.ts.URL+"/api/report"))
		assert.Equal(t, types.AmountFromFloat(780), rep.KPIs.TotalRevenue)
		assert.Equal(t, 7, rep.KPIs.TotalOrders)
		assert.Len(t, rep.CampaignSummary, 3)
	})

	t.Run("repeated and comma-separated values", func(t *testing.T) {
		a := decode[types.Report](t, get(t, f.ts.URL+"/api/report?platform=Instagram&platform=YouTube"))
		b := decode[types.Report](t, get(t, f.ts.URL+"/api/report?platform=Instagram,YouTube"))
		assert.Equal(t, a, b)
		assert.Equal(t, types.AmountFromFloat(780), a.KPIs.TotalRevenue)
	})

	t.Run("single platform", func(t *testing.T) {
		rep := decode[types.Report](t, get(t, f.ts.URL+"/api/report?platform=Instagram"))
		assert.Equal(t, types.AmountFromFloat(580), rep.KPIs.TotalRevenue)
		assert.Equal(t, 3, rep.KPIs.TotalOrders)
		assert.Equal(t, []string{"Instagram"}, rep.Selection.Platforms)
	})

	t.Run("explicitly empty dimension selects nothing", func(t *testing.T) {
		rep := decode[types.Report](t, get(t, f.ts.URL+"/api/report?category="))
		assert.Zero(t, rep.KPIs.TotalRevenue)
		assert.Zero(t, rep.KPIs.TotalOrders)
		assert.NotNil(t, rep.CampaignSummary)
		assert.Empty(t, rep.CampaignSummary)
		assert.Empty(t, rep.TopInfluencers)
	})
}

func TestTableEndpoint_JSON(t *testing.T) {
	f := setupTestServer(t)

	rows := decode[[]types.CampaignRow](t, get(t, f.ts.URL+"/api/tables/campaign_summary"))
	require.Len(t, rows, 3)
	assert.Equal(t, "Campaign_A", rows[0].Campaign)
	assert.Equal(t, 4, rows[0].Orders)
}

func TestTableEndpoint_Display(t *testing.T) {
	f := setupTestServer(t)

	tbl := decode[export.Table](t, get(t, f.ts.URL+"/api/tables/campaign_summary?display=true"))
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "₹579.50", tbl.Rows[0][2])
}

func TestTableEndpoint_CSV(t *testing.T) {
	f := setupTestServer(t)

	resp := get(t, f.ts.URL+"/api/tables/persona_summary?format=csv")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Best_Personas.csv")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"category", "gender", "revenue", "percent"}, records[0])
}

func TestTableEndpoint_Errors(t *testing.T) {
	f := setupTestServer(t)

	resp := get(t, f.ts.URL+"/api/tables/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = get(t, f.ts.URL+"/api/tables/campaign_summary?format=xml")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportEndpoint(t *testing.T) {
	f := setupTestServer(t)

	resp := get(t, f.ts.URL+"/api/export?product=Gritzo")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), export.BundleFileName)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Len(t, zr.File, len(types.Tables))
}

func TestPublishExportEndpoint(t *testing.T) {
	f := setupTestServer(t)

	resp, err := http.Post(f.ts.URL+"/api/exports?platform=Instagram", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode[map[string]json.RawMessage](t, resp)
	var b publish.Bundle
	require.NoError(t, json.Unmarshal(body["bundle"], &b))
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, []string{"stub://" + b.ID}, b.Locations)
	assert.Equal(t, []string{"Instagram"}, b.Selection.Platforms)
	assert.Equal(t, 1, f.sink.calls)
}

func TestPublishExportEndpoint_SinkFailure(t *testing.T) {
	f := setupTestServer(t)
	f.sink.err = errors.New("bucket missing")

	resp, err := http.Post(f.ts.URL+"/api/exports", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body := decode[map[string]json.RawMessage](t, resp)
	assert.JSONEq(t, `"1 sink(s) failed"`, string(body["error"]))
}

func TestPublishExportEndpoint_NoSinks(t *testing.T) {
	f := setupTestServer(t, func(_ *types.ServerConfig, d *handlers.Deps) { d.Publisher = nil })

	resp, err := http.Post(f.ts.URL+"/api/exports", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestReloadEndpoint(t *testing.T) {
	f := setupTestServer(t)
	before := decode[map[string]string](t, get(t, f.ts.URL+"/api/health"))["datasetVersion"]

	ds := testutil.ScenarioDataset()
	ds.Tracking = ds.Tracking[:1]
	require.NoError(t, f.source.Save(context.Background(), ds))

	resp, err := http.Post(f.ts.URL+"/api/reload", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	after := decode[map[string]string](t, resp)["datasetVersion"]
	assert.NotEqual(t, before, after)

	rep := decode[types.Report](t, get(t, f.ts.URL+"/api/report"))
	assert.Equal(t, types.AmountFromFloat(500), rep.KPIs.TotalRevenue)
}

func TestReloadEndpoint_SourceFailure(t *testing.T) {
	f := setupTestServer(t)
	f.source.SetLoadError(errors.New("timeout"))

	resp, err := http.Post(f.ts.URL+"/api/reload", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	rep := decode[types.Report](t, get(t, f.ts.URL+"/api/report"))
	assert.Equal(t, types.AmountFromFloat(780), rep.KPIs.TotalRevenue)
}

func TestAPIKey(t *testing.T) {
	f := setupTestServer(t, func(c *types.ServerConfig, _ *handlers.Deps) { c.APIKey = "secret" })

	assert.Equal(t, http.StatusOK, get(t, f.ts.URL+"/api/health").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, f.ts.URL+"/api/report").StatusCode)

	req, err := http.NewRequest(http.MethodGet, f.ts.URL+"/api/report", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, auth := range []string{"Bearer secret", "Bearer wrong", "secret"} {
		req, err := http.NewRequest(http.MethodGet, f.ts.URL+"/api/options", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", auth)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		want := http.StatusUnauthorized
		if auth == "Bearer secret" {
			want = http.StatusOK
		}
		assert.Equal(t, want, resp.StatusCode, auth)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	f := setupTestServer(t)

	req, err := http.NewRequest(http.MethodGet, f.ts.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "abc123", resp.Header.Get("X-Request-ID"))
}

func TestDebugVars(t *testing.T) {
	f := setupTestServer(t)
	get(t, f.ts.URL+"/api/health")

	vars := decode[map[string]json.RawMessage](t, get(t, f.ts.URL+"/debug/vars"))
	assert.Contains(t, vars, "http_requests")
	assert.Contains(t, vars, "reports_built")
}

func TestDebugVars_RequiresAPIKey(t *testing.T) {
	f := setupTestServer(t, func(c *types.ServerConfig, _ *handlers.Deps) { c.APIKey = "secret" })

	assert.Equal(t, http.StatusUnauthorized, get(t, f.ts.URL+"/debug/vars").StatusCode)

	req, err := http.NewRequest(http.MethodGet, f.ts.URL+"/debug/vars", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
