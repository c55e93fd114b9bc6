package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpath/greenpath/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "greenpath-api",
		ServiceVersion: "test",
		Environment:    "test",
		Enabled:        false,
	})
	require.NoError(t, err)

	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestProviderMetrics_RecordsCalls(t *testing.T) {
	metrics, err := telemetry.NewProviderMetrics()
	require.NoError(t, err)

	ctx, call := metrics.Start(context.Background(), "osrm", "alternatives")
	assert.NotNil(t, ctx)
	assert.NotPanics(t, func() { call.End(assert.AnError) })
}

func TestProviderMetrics_NilIsNoop(t *testing.T) {
	var metrics *telemetry.ProviderMetrics

	ctx, call := metrics.Start(context.Background(), "waqi", "sample")
	assert.Equal(t, context.Background(), ctx)
	assert.NotPanics(t, func() { call.End(nil) })
}
