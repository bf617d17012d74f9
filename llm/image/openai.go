package image

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/BaSui01/trailerflow/internal/tlsutil"
)

const openAIProviderName = "openai-image"

// OpenAIProvider使用OpenAI DALL-E执行图像生成.
type OpenAIProvider struct {
	cfg    OpenAIConfig
	http   *http.Client
	client openai.Client
	logger *zap.Logger
}

// OpenAIOption customises an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIHTTPClient replaces the hardened default client.
func WithOpenAIHTTPClient(c *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) { p.http = c }
}

// 新OpenAIProvider创建了新的OpenAI图像提供商.
func NewOpenAIProvider(cfg OpenAIConfig, logger *zap.Logger, opts ...OpenAIOption) *OpenAIProvider {
	defaults := DefaultOpenAIConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Size == "" {
		cfg.Size = defaults.Size
	}
	if cfg.Quality == "" {
		cfg.Quality = defaults.Quality
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &OpenAIProvider{
		cfg:    cfg,
		http:   tlsutil.SecureHTTPClient(cfg.Timeout),
		logger: logger.With(zap.String("component", "image"), zap.String("provider", openAIProviderName)),
	}
	for _, opt := range opts {
		opt(p)
	}

	// SDK 自带重试关闭：每次生成都是一次全新请求
	p.client = openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/v1/"),
		option.WithHTTPClient(p.http),
		option.WithMaxRetries(0),
	)
	return p
}

func (p *OpenAIProvider) Name() string { return openAIProviderName }

// GenerateImage 从文本提示生成图像 。
func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, emptyPrompt(p.Name())
	}

	resp, err := p.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:  prompt,
		Model:   openai.ImageModel(p.cfg.Model),
		Size:    openai.ImageGenerateParamsSize(p.cfg.Size),
		Quality: openai.ImageGenerateParamsQuality(p.cfg.Quality),
		N:       openai.Int(1),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, providerErrorf(p.Name(), "dalle error: status=%d", apiErr.StatusCode).
				WithHTTPStatus(apiErr.StatusCode).
				WithCause(err)
		}
		return nil, providerErrorf(p.Name(), "dalle request failed").WithCause(err)
	}

	if len(resp.Data) == 0 {
		return nil, providerErrorf(p.Name(), "dalle returned no images")
	}
	img := resp.Data[0]

	switch {
	case img.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, providerErrorf(p.Name(), "malformed b64_json payload").WithCause(err)
		}
		return data, nil
	case img.URL != "":
		p.logger.Debug("fetching generated image", zap.String("url", img.URL))
		return fetchImage(ctx, p.http, p.Name(), img.URL)
	default:
		return nil, providerErrorf(p.Name(), "dalle returned neither url nor b64_json")
	}
}
