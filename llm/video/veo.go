package video

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/BaSui01/trailerflow/internal/metrics"
	"github.com/BaSui01/trailerflow/internal/tlsutil"
	"github.com/BaSui01/trailerflow/types"
)

const veoProviderName = "veo"

// VeoProvider使用Google Veo 3.1执行视频生成.
// Models.GenerateVideos 提交任务, Operations.GetVideosOperation 轮询,
// Files.Download 下载生成的样本.
type VeoProvider struct {
	cfg       VeoConfig
	http      *http.Client
	client    *genai.Client
	sleep     SleepFunc
	collector *metrics.Collector
	logger    *zap.Logger
}

// Option customises a VeoProvider.
type Option func(*VeoProvider)

// WithHTTPClient replaces the hardened default client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *VeoProvider) { p.http = c }
}

// WithSleep replaces the wait between status checks.
func WithSleep(fn SleepFunc) Option {
	return func(p *VeoProvider) { p.sleep = fn }
}

// WithCollector records poll counts.
func WithCollector(c *metrics.Collector) Option {
	return func(p *VeoProvider) { p.collector = c }
}

// NewVeoProvider创建了一个新的Veo视频提供商. The API key is bound to the
// genai client here.
func NewVeoProvider(ctx context.Context, cfg VeoConfig, logger *zap.Logger, opts ...Option) (*VeoProvider, error) {
	defaults := DefaultVeoConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.AspectRatio == "" {
		cfg.AspectRatio = defaults.AspectRatio
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = defaults.MaxPollAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &VeoProvider{
		cfg:    cfg,
		http:   tlsutil.SecureHTTPClient(cfg.Timeout),
		sleep:  SleepContext,
		logger: logger.With(zap.String("component", "video"), zap.String("provider", veoProviderName)),
	}
	for _, opt := range opts {
		opt(p)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  withDownloadStatus(p.http),
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, providerErrorf("failed to create genai client").WithCause(err)
	}
	p.client = client
	return p, nil
}

func (p *VeoProvider) Name() string { return veoProviderName }

// GenerateVideo生成视频使用Veo 3.1.
func (p *VeoProvider) GenerateVideo(ctx context.Context, req *GenerateRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	op, err := p.submit(ctx, req)
	if err != nil {
		return nil, err
	}
	p.logger.Info("video job submitted",
		zap.String("operation", op.Name),
		zap.Int("duration_seconds", req.DurationSeconds),
		zap.Int("reference_images", len(req.ReferenceImages)),
	)

	job := &Job{Name: op.Name, State: JobSubmitted}
	if op.Done || op.Error != nil {
		job.apply(operationStatus(op))
	}

	pl := &poller{
		interval:    p.cfg.PollInterval,
		maxAttempts: p.cfg.MaxPollAttempts,
		sleep:       p.sleep,
		logger:      p.logger,
	}
	err = pl.run(ctx, job, p.checkOperation)
	p.collector.RecordVideoPolls(veoProviderName, job.Polls)
	if err != nil {
		return nil, err
	}

	p.logger.Info("video job ready", zap.String("operation", job.Name), zap.Int("polls", job.Polls))
	return p.download(ctx, job.VideoURI)
}

// buildVideosConfig carries frames and references; personGeneration is only
// set for reference-conditioned clips.
func buildVideosConfig(req *GenerateRequest, defaultAspect string) *genai.GenerateVideosConfig {
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = defaultAspect
	}
	cfg := &genai.GenerateVideosConfig{
		AspectRatio:     aspect,
		NegativePrompt:  req.NegativePrompt,
		DurationSeconds: genai.Ptr(int32(req.DurationSeconds)),
	}
	if len(req.EndFrame) > 0 {
		cfg.LastFrame = encodeImage(req.EndFrame)
	}
	if len(req.ReferenceImages) > 0 {
		for _, ref := range req.ReferenceImages {
			cfg.ReferenceImages = append(cfg.ReferenceImages, &genai.VideoGenerationReferenceImage{
				Image:         encodeImage(ref),
				ReferenceType: genai.VideoGenerationReferenceTypeAsset,
			})
		}
		cfg.PersonGeneration = PersonGenerationAllowAdult
	}
	return cfg
}

func encodeImage(data []byte) *genai.Image {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/png"
	}
	return &genai.Image{ImageBytes: data, MIMEType: mimeType}
}

func (p *VeoProvider) submit(ctx context.Context, req *GenerateRequest) (*genai.GenerateVideosOperation, error) {
	var startFrame *genai.Image
	if len(req.StartFrame) > 0 {
		startFrame = encodeImage(req.StartFrame)
	}

	start := time.Now()
	op, err := p.client.Models.GenerateVideos(ctx, p.cfg.Model, req.Prompt, startFrame, buildVideosConfig(req, p.cfg.AspectRatio))
	if err != nil {
		return nil, apiError("veo submit", err)
	}
	if op.Name == "" && !op.Done {
		return nil, providerErrorf("veo submit returned no operation name")
	}
	p.logger.Debug("veo call", zap.String("call", "veo submit"), zap.Duration("took", time.Since(start)))
	return op, nil
}

func (p *VeoProvider) checkOperation(ctx context.Context, name string) (jobStatus, error) {
	op, err := p.client.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: name}, nil)
	if err != nil {
		return jobStatus{}, apiError("veo poll", err)
	}
	if op.Name == "" {
		op.Name = name
	}
	return operationStatus(op), nil
}

// operationStatus maps a Veo operation to one status report.
func operationStatus(op *genai.GenerateVideosOperation) jobStatus {
	if op.Error != nil {
		return jobStatus{Err: providerErrorf("video job %s failed: code=%v %v", op.Name, op.Error["code"], op.Error["message"])}
	}
	if !op.Done {
		return jobStatus{}
	}
	if op.Response == nil {
		return jobStatus{Done: true}
	}
	resp := op.Response
	if len(resp.GeneratedVideos) == 0 && resp.RAIMediaFilteredCount > 0 {
		return jobStatus{Err: providerErrorf("video job %s: %d video(s) filtered: %s",
			op.Name, resp.RAIMediaFilteredCount, strings.Join(resp.RAIMediaFilteredReasons, ", "))}
	}
	for _, v := range resp.GeneratedVideos {
		if v != nil && v.Video != nil && v.Video.URI != "" {
			return jobStatus{Done: true, VideoURI: v.Video.URI}
		}
	}
	return jobStatus{Done: true}
}

func (p *VeoProvider) download(ctx context.Context, uri string) ([]byte, error) {
	data, err := p.client.Files.Download(ctx, genai.NewDownloadURIFromVideo(&genai.Video{URI: uri}), nil)
	if err != nil {
		var typed *types.Error
		if errors.As(err, &typed) {
			return nil, typed
		}
		return nil, providerErrorf("video download failed: %s", uri).WithCause(err)
	}
	if len(data) == 0 {
		return nil, providerErrorf("downloaded video is empty")
	}
	return data, nil
}

// apiError converts a genai error into a ProviderError, keeping the status.
func apiError(what string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providerErrorf("%s error: status=%d %s", what, apiErr.Code, apiErr.Message).
			WithHTTPStatus(apiErr.Code).
			WithCause(err)
	}
	return providerErrorf("%s request failed", what).WithCause(err)
}

// downloadStatus fails media downloads answered with an error status;
// Files.Download would otherwise return the error body as video bytes.
type downloadStatus struct {
	base http.RoundTripper
}

func withDownloadStatus(c *http.Client) *http.Client {
	if c == nil {
		c = &http.Client{}
	}
	wrapped := *c
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped.Transport = downloadStatus{base: base}
	return &wrapped
}

func (t downloadStatus) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || req.Method != http.MethodGet || !strings.HasSuffix(req.URL.Path, ":download") {
		return resp, err
	}
	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, providerErrorf("video download error: status=%d body=%s", resp.StatusCode, string(errBody)).
			WithHTTPStatus(resp.StatusCode)
	}
	return resp, nil
}

func providerErrorf(format string, args ...any) *types.Error {
	return types.NewErrorf(types.ErrProvider, format, args...).WithProvider(veoProviderName)
}
