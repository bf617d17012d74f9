package video

import "time"

// VeoConfig配置了谷歌Veo视频生成供应商.
type VeoConfig struct {
	APIKey          string        `json:"api_key" yaml:"api_key"`
	BaseURL         string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model           string        `json:"model,omitempty" yaml:"model,omitempty"` // veo-3.1-generate-preview
	AspectRatio     string        `json:"aspect_ratio,omitempty" yaml:"aspect_ratio,omitempty"`
	PollInterval    time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	MaxPollAttempts int           `json:"max_poll_attempts,omitempty" yaml:"max_poll_attempts,omitempty"`
	Timeout         time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// 默认 VeoConfig 返回默认 Veo 配置 。
func DefaultVeoConfig() VeoConfig {
	return VeoConfig{
		BaseURL:         "https://generativelanguage.googleapis.com",
		Model:           "veo-3.1-generate-preview",
		AspectRatio:     DefaultAspectRatio,
		PollInterval:    10 * time.Second,
		MaxPollAttempts: 90,
		Timeout:         180 * time.Second,
	}
}
