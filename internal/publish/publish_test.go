package publish

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/campaignlens/internal/export"
	"github.com/dwsmith1983/campaignlens/internal/metrics"
	"github.com/dwsmith1983/campaignlens/internal/report"
	"github.com/dwsmith1983/campaignlens/internal/testutil"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

var bundleTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	snap := testutil.ScenarioSnapshot(t)
	rep := report.Build(context.Background(), snap, testutil.AllSelection(snap))
	b, err := NewBundle(rep, "", bundleTime)
	require.NoError(t, err)
	return b
}

type recordingSink struct {
	name string
	err  error
	seen [][]string
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Send(_ context.Context, b *Bundle) error {
	s.seen = append(s.seen, append([]string(nil), b.Locations...))
	if s.err != nil {
		return s.err
	}
	b.Locations = append(b.Locations, s.name+"://stored")
	return nil
}

func TestNewBundle(t *testing.T) {
	b := testBundle(t)

	id, err := ulid.Parse(b.ID)
	require.NoError(t, err)
	assert.Equal(t, bundleTime.UnixMilli(), int64(id.Time()))
	assert.Equal(t, export.BundleFileName, b.FileName)
	assert.Equal(t, len(b.Data), b.Size)
	assert.NotEmpty(t, b.DatasetVersion)
	assert.Equal(t, 7, b.KPIs.TotalOrders)

	zr, err := zip.NewReader(bytes.NewReader(b.Data), int64(len(b.Data)))
	require.NoError(t, err)
	assert.Len(t, zr.File, len(types.Tables))
}

func TestNewBundle_CustomFileName(t *testing.T) {
	b, err := NewBundle(types.Report{}, "weekly.zip", bundleTime)
	require.NoError(t, err)
	assert.Equal(t, "weekly.zip", b.FileName)
}

func TestBundle_JSONOmitsData(t *testing.T) {
	b := testBundle(t)
	data, err := json.Marshal(b)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "data")
	assert.NotContains(t, m, "Data")
	assert.Equal(t, b.ID, m["id"])
}

func TestDispatch_StorageBeforeNotify(t *testing.T) {
	d, err := NewDispatcher(context.Background(), nil)
	require.NoError(t, err)

	notify := &recordingSink{name: "notify"}
	store := &recordingSink{name: "store"}
	d.Add(types.SinkWebhook, notify)
	d.Add(types.SinkFile, store)
	assert.Equal(t, 2, d.Len())

	b := testBundle(t)
	require.NoError(t, d.Dispatch(context.Background(), b))

	require.Len(t, store.seen, 1)
	assert.Empty(t, store.seen[0])
	require.Len(t, notify.seen, 1)
	assert.Equal(t, []string{"store://stored"}, notify.seen[0])
}

func TestDispatch_JoinsFailures(t *testing.T) {
	d, err := NewDispatcher(context.Background(), nil)
	require.NoError(t, err)

	errA := errors.New("a down")
	errB := errors.New("b down")
	ok := &recordingSink{name: "ok"}
	d.Add(types.SinkS3, &recordingSink{name: "a", err: errA})
	d.Add(types.SinkSNS, &recordingSink{name: "b", err: errB})
	d.Add(types.SinkEventBridge, ok)

	failedBefore := metrics.ExportsFailed.Value()
	publishedBefore := metrics.ExportsPublished.Value()

	err = d.Dispatch(context.Background(), testBundle(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, ok.seen, 1)
	assert.Equal(t, failedBefore+2, metrics.ExportsFailed.Value())
	assert.Equal(t, publishedBefore+1, metrics.ExportsPublished.Value())
}

func TestNewDispatcher_Configs(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDispatcher(context.Background(), []types.SinkConfig{
		{Type: types.SinkFile, Dir: dir},
		{Type: types.SinkS3, Bucket: "exports"},
		{Type: types.SinkSNS, TopicARN: "arn:aws:sns:us-east-1:123456789:exports"},
		{Type: types.SinkEventBridge},
		{Type: types.SinkWebhook, URL: "http://localhost:1"},
		{Type: types.SinkConsole},
	}, WithS3(&mockS3{}), WithSNS(&mockSNS{}), WithEventBridge(&mockEventBridge{}))
	require.NoError(t, err)
	assert.Equal(t, 6, d.Len())
}

func TestNewDispatcher_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.SinkConfig
	}{
		{"file without dir", types.SinkConfig{Type: types.SinkFile}},
		{"s3 without bucket", types.SinkConfig{Type: types.SinkS3}},
		{"webhook without url", types.SinkConfig{Type: types.SinkWebhook}},
		{"sns without topic", types.SinkConfig{Type: types.SinkSNS}},
		{"unknown", types.SinkConfig{Type: "carrier-pigeon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDispatcher(context.Background(), []types.SinkConfig{tt.cfg},
				WithS3(&mockS3{}), WithSNS(&mockSNS{}))
			assert.Error(t, err)
		})
	}
}

func TestFileSink_Send(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink, err := NewFileSink(dir)
	require.NoError(t, err)
	assert.Equal(t, "file", sink.Name())

	b := testBundle(t)
	require.NoError(t, sink.Send(context.Background(), b))

	want := filepath.Join(dir, b.ID+"-"+export.BundleFileName)
	assert.Equal(t, []string{want}, b.Locations)
	got, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, b.Data, got)
}

func TestWebhookSink_Send(t *testing.T) {
	var received Bundle
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, srv.Client())
	assert.Equal(t, "webhook", sink.Name())

	b := testBundle(t)
	b.Locations = []string{"s3://exports/key.zip"}
	require.NoError(t, sink.Send(context.Background(), b))

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, b.ID, received.ID)
	assert.Equal(t, b.Locations, received.Locations)
	assert.Nil(t, received.Data)
}

func TestWebhookSink_ErrorStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookSink(srv.URL, nil).Send(context.Background(), testBundle(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(1), calls.Load())
}

func TestConsoleSink_Send(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)
	b := testBundle(t)
	b.Locations = []string{"/tmp/out.zip"}
	require.NoError(t, sink.Send(context.Background(), b))

	assert.Contains(t, buf.String(), b.ID)
	assert.Contains(t, buf.String(), export.BundleFileName)
	assert.Contains(t, buf.String(), "/tmp/out.zip")
}
