// Package lambda provides shared types and initialization for Lambda handlers.
package lambda

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// ScheduledEvent is the input to the exporter Lambda.
type ScheduledEvent = events.CloudWatchEvent

// ExportRequest narrows the scheduled export. Nil dimensions select every
// observed value; an empty list selects nothing.
type ExportRequest struct {
	Platforms  *[]string `json:"platforms,omitempty"`
	Categories *[]string `json:"categories,omitempty"`
	Genders    *[]string `json:"genders,omitempty"`
	Products   *[]string `json:"products,omitempty"`
	FileName   string    `json:"fileName,omitempty"`
}

// ExportResponse summarizes one published export.
type ExportResponse struct {
	BundleID       string     `json:"bundleId"`
	DatasetVersion string     `json:"datasetVersion"`
	Locations      []string   `json:"locations"`
	KPIs           types.KPIs `json:"kpis"`
}

// ParseRequest decodes the event detail. Scheduled events carry an empty
// detail, which requests the all-values export.
func ParseRequest(ev ScheduledEvent) (ExportRequest, error) {
	var req ExportRequest
	if len(ev.Detail) == 0 || string(ev.Detail) == "null" {
		return req, nil
	}
	if err := json.Unmarshal(ev.Detail, &req); err != nil {
		return req, fmt.Errorf("decoding export request: %w", err)
	}
	return req, nil
}

// lookup exposes the request as a per-dimension lookup.
func (r ExportRequest) lookup(d types.Dimension) ([]string, bool) {
	var v *[]string
	switch d {
	case types.DimPlatform:
		v = r.Platforms
	case types.DimCategory:
		v = r.Categories
	case types.DimGender:
		v = r.Genders
	case types.DimProduct:
		v = r.Products
	}
	if v == nil {
		return nil, false
	}
	return *v, true
}
