package telemetry

import (
	"context"
	"testing"

	"delicioso/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelemetryConfig
	}{
		{
			name: "No-op when endpoint empty",
			cfg:  config.TelemetryConfig{Enabled: true, ServiceName: "test-service"},
		},
		{
			name: "No-op when explicitly disabled",
			cfg:  config.TelemetryConfig{Endpoint: "http://localhost:4318", Enabled: false, ServiceName: "test-service"},
		},
		{
			// A non-routable address so no actual export happens.
			name: "Provider when endpoint set",
			cfg:  config.TelemetryConfig{Endpoint: "http://192.0.2.1:4318", Enabled: true, ServiceName: "test-service"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), tt.cfg, zerolog.Nop())
			require.NoError(t, err)
			require.NotNil(t, shutdown)

			assert.NoError(t, shutdown(context.Background()))
		})
	}
}

func TestSetup_NoopShutdownIgnoresCancelledContext(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, shutdown(ctx))
}
