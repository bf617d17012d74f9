// =============================================================================
// 📦 TrailerFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// Image provider names
const (
	ImageProviderOpenAI = "openai"
	ImageProviderGemini = "gemini"
)

// Character failure policies
const (
	FailurePolicyHalt = "halt"
	FailurePolicySkip = "skip"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Output:    DefaultOutputConfig(),
		Image:     DefaultImageConfig(),
		Video:     DefaultVideoConfig(),
		Pipeline:  DefaultPipelineConfig(),
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultOutputConfig 返回默认输出配置
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Root:          "./output",
		WriteManifest: true,
	}
}

// DefaultImageConfig 返回默认图像生成配置
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		Provider: ImageProviderOpenAI,
		BaseURL:  "https://api.openai.com",
		Model:    "dall-e-3",
		Size:     "1024x1024",
		Quality:  "standard",
		Timeout:  120 * time.Second,
	}
}

// DefaultVideoConfig 返回默认视频生成配置
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		BaseURL:         "https://generativelanguage.googleapis.com",
		Model:           "veo-3.1-generate-preview",
		AspectRatio:     "16:9",
		PollInterval:    10 * time.Second,
		MaxPollAttempts: 90,
		Timeout:         180 * time.Second,
	}
}

// DefaultPipelineConfig 返回默认流程策略
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		OnCharacterFailure: FailurePolicyHalt,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "trailerflow",
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "trailerflow",
		SampleRate:   0.1,
	}
}
