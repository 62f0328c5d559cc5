package otel

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
)

func TestInit_Disabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")
	log := logrus.New()
	log.SetOutput(io.Discard)

	shutdown, err := Init(context.Background(), "zerofiltre-api", log)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")
	log := logrus.New()
	log.SetOutput(io.Discard)

	shutdown, err := Init(context.Background(), "zerofiltre-api", log)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, trace.AlwaysSample().Description(), sampler("always_on", "").Description())
	assert.Equal(t, trace.NeverSample().Description(), sampler("always_off", "").Description())
	assert.Equal(t, trace.TraceIDRatioBased(0.25).Description(), sampler("traceidratio", "0.25").Description())
	assert.Equal(t, trace.ParentBased(trace.TraceIDRatioBased(1)).Description(), sampler("parentbased_traceidratio", "oops").Description())
	assert.Equal(t, trace.ParentBased(trace.AlwaysSample()).Description(), sampler("", "").Description())
}
