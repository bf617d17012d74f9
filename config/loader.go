// =============================================================================
// 📦 TrailerFlow 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("trailerflow.yaml").
//	    WithEnvPrefix("TRAILERFLOW").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 TrailerFlow 的完整配置结构
type Config struct {
	// Output 输出目录配置
	Output OutputConfig `yaml:"output" env:"OUTPUT"`

	// Credentials 通用凭据
	Credentials CredentialsConfig `yaml:"credentials" env:"CREDENTIALS"`

	// Image 图像生成服务配置
	Image ImageConfig `yaml:"image" env:"IMAGE"`

	// Video 视频生成服务配置
	Video VideoConfig `yaml:"video" env:"VIDEO"`

	// Pipeline 流程策略
	Pipeline PipelineConfig `yaml:"pipeline" env:"PIPELINE"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Metrics 指标配置
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// OutputConfig 输出目录配置
type OutputConfig struct {
	// 输出根目录，refs/ 与 scenes/ 均位于其下
	Root string `yaml:"root" env:"ROOT"`
	// 是否写入 manifest.json
	WriteManifest bool `yaml:"write_manifest" env:"WRITE_MANIFEST"`
}

// CredentialsConfig 通用凭据配置
type CredentialsConfig struct {
	// 图像与视频服务共用的 API Key
	ProjectAPIKey string `yaml:"project_api_key" env:"PROJECT_API_KEY"`
	// 包含 {"project_api_key": "..."} 的 JSON 文件
	SecretFile string `yaml:"secret_file" env:"SECRET_FILE"`
}

// ImageConfig 图像生成配置
type ImageConfig struct {
	// Provider: openai, gemini
	Provider string `yaml:"provider" env:"PROVIDER"`
	// API Key（为空时使用 credentials.project_api_key）
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 基础 URL（可选）
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 模型名称
	Model string `yaml:"model" env:"MODEL"`
	// 图像尺寸（openai）
	Size string `yaml:"size" env:"SIZE"`
	// 图像质量（openai）
	Quality string `yaml:"quality" env:"QUALITY"`
	// 请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// VideoConfig 视频生成配置
type VideoConfig struct {
	// API Key（为空时使用 credentials.project_api_key）
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 基础 URL（可选）
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// 模型名称
	Model string `yaml:"model" env:"MODEL"`
	// 宽高比
	AspectRatio string `yaml:"aspect_ratio" env:"ASPECT_RATIO"`
	// 轮询间隔
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	// 最大轮询次数
	MaxPollAttempts int `yaml:"max_poll_attempts" env:"MAX_POLL_ATTEMPTS"`
	// 单次 HTTP 请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// PipelineConfig 流程策略配置
type PipelineConfig struct {
	// 角色参考图失败时的策略: halt, skip
	OnCharacterFailure string `yaml:"on_character_failure" env:"ON_CHARACTER_FAILURE"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 指标命名空间
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
	// 运行结束后写入的 textfile 路径（空则不写）
	TextfilePath string `yaml:"textfile_path" env:"TEXTFILE_PATH"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "TRAILERFLOW",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量 → 凭据回填
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolveCredentials(); err != nil {
		return nil, err
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		envTag := t.Field(i).Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// time.Duration 走 ParseDuration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// =============================================================================
// 🔑 凭据
// =============================================================================

type secretFile struct {
	ProjectAPIKey string `json:"project_api_key"`
}

// resolveCredentials 读取 secret 文件并回填为空的 image/video API Key
func (c *Config) resolveCredentials() error {
	if c.Credentials.SecretFile != "" && c.Credentials.ProjectAPIKey == "" {
		data, err := os.ReadFile(c.Credentials.SecretFile)
		if err != nil {
			return fmt.Errorf("failed to read secret file: %w", err)
		}
		var s secretFile
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to parse secret file: %w", err)
		}
		c.Credentials.ProjectAPIKey = s.ProjectAPIKey
	}

	if c.Image.APIKey == "" {
		c.Image.APIKey = c.Credentials.ProjectAPIKey
	}
	if c.Video.APIKey == "" {
		c.Video.APIKey = c.Credentials.ProjectAPIKey
	}
	return nil
}

// =============================================================================
// 🔍 辅助函数
// =============================================================================

// MustLoad 加载配置，失败时 panic
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.Output.Root == "" {
		errs = append(errs, "output.root is required")
	}

	switch c.Image.Provider {
	case ImageProviderOpenAI, ImageProviderGemini:
	default:
		errs = append(errs, fmt.Sprintf("unsupported image provider %q", c.Image.Provider))
	}
	if c.Image.APIKey == "" {
		errs = append(errs, "image api key is required")
	}
	if c.Video.APIKey == "" {
		errs = append(errs, "video api key is required")
	}
	if c.Video.PollInterval <= 0 {
		errs = append(errs, "video.poll_interval must be positive")
	}
	if c.Video.MaxPollAttempts <= 0 {
		errs = append(errs, "video.max_poll_attempts must be positive")
	}

	switch c.Pipeline.OnCharacterFailure {
	case FailurePolicyHalt, FailurePolicySkip:
	default:
		errs = append(errs, fmt.Sprintf("pipeline.on_character_failure must be %q or %q", FailurePolicyHalt, FailurePolicySkip))
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry.sample_rate must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
