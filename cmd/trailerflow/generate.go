package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/BaSui01/trailerflow/config"
	"github.com/BaSui01/trailerflow/internal/metrics"
	"github.com/BaSui01/trailerflow/internal/telemetry"
	"github.com/BaSui01/trailerflow/llm/image"
	"github.com/BaSui01/trailerflow/llm/video"
	"github.com/BaSui01/trailerflow/trailer"
)

// =============================================================================
// 🎬 run / refs / scenes 命令
// =============================================================================

func runGenerate(mode string, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(mode, flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "Path to config file")
	envFile := flags.String("env-file", ".env", "Dotenv file with TRAILERFLOW_* variables")
	inputPath := flags.String("input", "", "Path to breakdown document")
	outputRoot := flags.String("output", "", "Output root directory")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *inputPath == "" {
		fmt.Fprintln(stderr, "--input is required")
		return 2
	}

	// 加载配置
	cfg, err := loadConfig(*envFile, *configPath, *outputRoot)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid config: %v\n", err)
		return 1
	}

	// 初始化日志
	logger := initLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	breakdown, err := trailer.LoadBreakdown(*inputPath)
	if err != nil {
		logger.Error("failed to load breakdown", zap.String("input", *inputPath), zap.Error(err))
		return 1
	}

	// Ctrl-C 只停止本地等待，已提交的远端任务不会取消
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelProviders, err := telemetry.Init(ctx, cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelProviders.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(cfg.Metrics.Namespace, reg, logger)
	defer writeMetrics(cfg.Metrics, reg, logger)

	images, err := newImageProvider(ctx, cfg.Image, logger)
	if err != nil {
		logger.Error("failed to create image provider", zap.Error(err))
		return 1
	}
	videos, err := video.NewVeoProvider(ctx, veoConfig(cfg.Video), logger, video.WithCollector(collector))
	if err != nil {
		logger.Error("failed to create video provider", zap.Error(err))
		return 1
	}

	pipeline, err := trailer.NewPipeline(images, videos, trailer.PipelineConfig{
		OutputRoot:         cfg.Output.Root,
		OnCharacterFailure: trailer.FailurePolicy(cfg.Pipeline.OnCharacterFailure),
		WriteManifest:      cfg.Output.WriteManifest,
	},
		trailer.WithLogger(logger),
		trailer.WithCollector(collector),
		trailer.WithTracer(telemetry.Tracer()),
	)
	if err != nil {
		logger.Error("failed to create pipeline", zap.Error(err))
		return 1
	}

	logger.Info("Starting TrailerFlow",
		zap.String("version", Version),
		zap.String("command", mode),
		zap.String("input", *inputPath),
		zap.String("image_provider", images.Name()),
		zap.String("video_provider", videos.Name()),
	)

	var manifest *trailer.Manifest
	switch mode {
	case "refs":
		manifest, err = pipeline.RunReferences(ctx, breakdown)
	case "scenes":
		manifest, err = pipeline.RunScenesOnly(ctx, breakdown)
	default:
		manifest, err = pipeline.Run(ctx, breakdown)
	}

	if manifest != nil {
		printSummary(stdout, manifest)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Run failed: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(envFile, path, outputRoot string) (*config.Config, error) {
	// .env 不覆盖已存在的环境变量；文件缺失时忽略
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if outputRoot != "" {
		cfg.Output.Root = outputRoot
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newImageProvider binds the configured image provider and its credential.
func newImageProvider(ctx context.Context, cfg config.ImageConfig, logger *zap.Logger) (image.Provider, error) {
	switch cfg.Provider {
	case config.ImageProviderGemini:
		gcfg := image.GeminiConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}
		// OpenAI 的默认地址和模型对 Gemini 无意义
		defaults := config.DefaultImageConfig()
		if gcfg.BaseURL == defaults.BaseURL {
			gcfg.BaseURL = ""
		}
		if gcfg.Model == defaults.Model {
			gcfg.Model = ""
		}
		return image.NewGeminiProvider(ctx, gcfg, logger)
	case config.ImageProviderOpenAI, "":
		return image.NewOpenAIProvider(image.OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Size:    cfg.Size,
			Quality: cfg.Quality,
			Timeout: cfg.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported image provider %q", cfg.Provider)
	}
}

func veoConfig(cfg config.VideoConfig) video.VeoConfig {
	return video.VeoConfig{
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		Model:           cfg.Model,
		AspectRatio:     cfg.AspectRatio,
		PollInterval:    cfg.PollInterval,
		MaxPollAttempts: cfg.MaxPollAttempts,
		Timeout:         cfg.Timeout,
	}
}

func writeMetrics(cfg config.MetricsConfig, reg *prometheus.Registry, logger *zap.Logger) {
	if cfg.TextfilePath == "" {
		return
	}
	if err := prometheus.WriteToTextfile(cfg.TextfilePath, reg); err != nil {
		logger.Warn("failed to write metrics textfile", zap.String("path", cfg.TextfilePath), zap.Error(err))
		return
	}
	logger.Debug("metrics written", zap.String("path", cfg.TextfilePath))
}

func printSummary(w io.Writer, m *trailer.Manifest) {
	fmt.Fprintf(w, "Run %s (%s)\n", m.RunID, m.Mode)
	for _, name := range m.References.Names() {
		fmt.Fprintf(w, "  ref    %-16s %s\n", name, m.References[name])
	}
	for _, f := range m.CharacterFailures {
		fmt.Fprintf(w, "  ref    %-16s FAILED: %s\n", f.CharacterName, f.Error)
	}
	for _, s := range m.Scenes {
		if s.Status == trailer.SceneStatusOK {
			fmt.Fprintf(w, "  scene  %-16d %s\n", s.SceneNumber, s.Path)
			continue
		}
		fmt.Fprintf(w, "  scene  %-16d %s: %s\n", s.SceneNumber, s.Status, s.Error)
	}
}
