// exporter Lambda builds the all-values campaign report and publishes its
// ZIP bundle. Invoked by an EventBridge schedule; a non-empty event detail
// narrows the selection.
package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	intlambda "github.com/dwsmith1983/campaignlens/internal/lambda"
)

var (
	deps     *intlambda.Deps
	depsOnce sync.Once
	depsErr  error
)

func getDeps() (*intlambda.Deps, error) {
	depsOnce.Do(func() {
		deps, depsErr = intlambda.Init(context.Background())
	})
	return deps, depsErr
}

func handler(ctx context.Context, ev intlambda.ScheduledEvent) (intlambda.ExportResponse, error) {
	d, err := getDeps()
	if err != nil {
		return intlambda.ExportResponse{}, err
	}
	req, err := intlambda.ParseRequest(ev)
	if err != nil {
		return intlambda.ExportResponse{}, err
	}
	return handle(ctx, d, req)
}

func handle(ctx context.Context, d *intlambda.Deps, req intlambda.ExportRequest) (intlambda.ExportResponse, error) {
	resp, err := intlambda.Export(ctx, d, req)
	if err != nil {
		d.Logger.Error("export failed", "bundle", resp.BundleID, "error", err)
	}
	return resp, err
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	awslambda.Start(handler)
}
