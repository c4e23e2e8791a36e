package lambda

import (
	"context"
	"fmt"

	"github.com/dwsmith1983/campaignlens/internal/filter"
	"github.com/dwsmith1983/campaignlens/internal/metrics"
	"github.com/dwsmith1983/campaignlens/internal/publish"
	"github.com/dwsmith1983/campaignlens/internal/report"
	"github.com/dwsmith1983/campaignlens/internal/sources"
)

// Export loads the dataset, builds the requested report and publishes its
// ZIP bundle to every configured sink.
func Export(ctx context.Context, d *Deps, req ExportRequest) (ExportResponse, error) {
	snap, err := sources.Load(ctx, d.Source, d.Timeout, d.Logger)
	if err != nil {
		return ExportResponse{}, err
	}

	sel := filter.Resolve(snap.Options(), req.lookup)
	rep := report.Build(ctx, snap, sel)

	fileName := req.FileName
	if fileName == "" {
		fileName = d.FileName
	}
	b, err := publish.NewBundle(rep, fileName, d.Now())
	if err != nil {
		return ExportResponse{}, err
	}
	metrics.ExportsBuilt.Inc(ctx)

	resp := ExportResponse{
		BundleID:       b.ID,
		DatasetVersion: b.DatasetVersion,
		KPIs:           b.KPIs,
	}
	err = d.Dispatcher.Dispatch(ctx, b)
	resp.Locations = b.Locations
	if err != nil {
		return resp, fmt.Errorf("publishing export %s: %w", b.ID, err)
	}
	d.Logger.Info("export published", "bundle", b.ID, "version", b.DatasetVersion, "locations", b.Locations)
	return resp, nil
}
