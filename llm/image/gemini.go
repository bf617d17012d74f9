package image

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/BaSui01/trailerflow/internal/tlsutil"
)

const geminiProviderName = "gemini-image"

// GeminiProvider implements image generation using Google Gemini's native multimodal capabilities.
type GeminiProvider struct {
	cfg    GeminiConfig
	client *genai.Client
	logger *zap.Logger
}

// GeminiOption customises a GeminiProvider.
type GeminiOption func(*genai.ClientConfig)

// WithGeminiHTTPClient replaces the hardened default client.
func WithGeminiHTTPClient(c *http.Client) GeminiOption {
	return func(cc *genai.ClientConfig) { cc.HTTPClient = c }
}

// NewGeminiProvider creates a new Gemini image provider. The API key is bound
// to the client here.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, logger *zap.Logger, opts ...GeminiOption) (*GeminiProvider, error) {
	defaults := DefaultGeminiConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  tlsutil.SecureHTTPClient(cfg.Timeout),
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, providerErrorf(geminiProviderName, "failed to create genai client").WithCause(err)
	}

	return &GeminiProvider{
		cfg:    cfg,
		client: client,
		logger: logger.With(zap.String("component", "image"), zap.String("provider", geminiProviderName)),
	}, nil
}

func (p *GeminiProvider) Name() string { return geminiProviderName }

// GenerateImage returns the first inline image part of the response.
func (p *GeminiProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, emptyPrompt(p.Name())
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, providerErrorf(p.Name(), "gemini error: status=%d %s", apiErr.Code, apiErr.Message).
				WithHTTPStatus(apiErr.Code).
				WithCause(err)
		}
		return nil, providerErrorf(p.Name(), "gemini request failed").WithCause(err)
	}

	var notes []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
			if part.Text != "" {
				notes = append(notes, part.Text)
			}
		}
	}

	if len(notes) > 0 {
		p.logger.Debug("gemini returned text only", zap.Strings("text", notes))
		return nil, providerErrorf(p.Name(), "gemini returned no image: %s", strings.Join(notes, " "))
	}
	return nil, providerErrorf(p.Name(), "gemini returned no image")
}
