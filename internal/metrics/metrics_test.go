package metrics

import (
	"context"
	"expvar"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestCounter_AddMirrorsExpvar(t *testing.T) {
	before := ReportsBuilt.Value()
	ReportsBuilt.Inc(context.Background())
	ReportsBuilt.Add(context.Background(), 2, attribute.String("source", "test"))

	assert.Equal(t, before+3, ReportsBuilt.Value())
	v, ok := expvar.Get("reports_built").(*expvar.Int)
	if assert.True(t, ok) {
		assert.Equal(t, before+3, v.Value())
	}
}

func TestObserveBuild_NoProvider(t *testing.T) {
	assert.NotPanics(t, func() { ObserveBuild(context.Background(), 5*time.Millisecond) })
}
