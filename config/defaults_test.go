package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.NotEqual(t, OutputConfig{}, cfg.Output)
	assert.NotEqual(t, ImageConfig{}, cfg.Image)
	assert.NotEqual(t, VideoConfig{}, cfg.Video)
	assert.NotEqual(t, PipelineConfig{}, cfg.Pipeline)
	assert.NotEqual(t, MetricsConfig{}, cfg.Metrics)
	assert.NotEqual(t, TelemetryConfig{}, cfg.Telemetry)
	assert.NotEmpty(t, cfg.Log.Level)

	// 凭据没有默认值
	assert.Equal(t, CredentialsConfig{}, cfg.Credentials)
}

func TestDefaultImageConfig(t *testing.T) {
	cfg := DefaultImageConfig()
	assert.Equal(t, ImageProviderOpenAI, cfg.Provider)
	assert.Equal(t, "dall-e-3", cfg.Model)
	assert.Equal(t, "1024x1024", cfg.Size)
	assert.Equal(t, "standard", cfg.Quality)
	assert.Equal(t, 120*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.APIKey)
}

func TestDefaultVideoConfig(t *testing.T) {
	cfg := DefaultVideoConfig()
	assert.Equal(t, "veo-3.1-generate-preview", cfg.Model)
	assert.Equal(t, "16:9", cfg.AspectRatio)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 90, cfg.MaxPollAttempts)
}

func TestDefaultPipelineConfig(t *testing.T) {
	assert.Equal(t, FailurePolicyHalt, DefaultPipelineConfig().OnCharacterFailure)
}

func TestDefaultTelemetryConfig(t *testing.T) {
	cfg := DefaultTelemetryConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "trailerflow", cfg.ServiceName)
	assert.InDelta(t, 0.1, cfg.SampleRate, 0.001)
}
