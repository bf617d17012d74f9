package trailer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/trailerflow/internal/metrics"
	"github.com/BaSui01/trailerflow/llm/image"
	"github.com/BaSui01/trailerflow/llm/video"
	"github.com/BaSui01/trailerflow/types"
)

// SceneVideoGenerator produces one clip per scene under scenes/.
type SceneVideoGenerator struct {
	images image.Provider
	videos video.Provider
	layout Layout
	instruments
}

// NewSceneVideoGenerator creates a generator writing under layout.
func NewSceneVideoGenerator(images image.Provider, videos video.Provider, layout Layout, opts ...Option) *SceneVideoGenerator {
	return &SceneVideoGenerator{
		images:      images,
		videos:      videos,
		layout:      layout,
		instruments: newInstruments("scenes", opts),
	}
}

// Generate processes scenes in input order. On the first failing scene it
// returns the paths of the scenes completed so far together with the error.
func (g *SceneVideoGenerator) Generate(ctx context.Context, scenes []Scene, refs ReferenceMap) ([]string, error) {
	paths := make([]string, 0, len(scenes))
	for _, s := range scenes {
		path, err := g.GenerateScene(ctx, s, refs)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// GenerateScene runs one scene: reference lookup, clip check, start frame,
// end frame, video, write. Lookup and clip errors are raised before any
// provider call.
func (g *SceneVideoGenerator) GenerateScene(ctx context.Context, s Scene, refs ReferenceMap) (path string, err error) {
	ctx, span := g.tracer.Start(ctx, "trailer.scene", trace.WithAttributes(
		attribute.Int("scene.number", s.SceneNumber),
		attribute.String("scene.type", s.SceneType),
		attribute.Int("scene.duration_seconds", s.DurationSeconds),
		attribute.Int("scene.reference_count", len(s.ReferenceImages)),
	))
	defer func() {
		g.collector.RecordScene(err)
		endSpan(span, err)
	}()

	logger := g.logger.With(zap.Int("scene", s.SceneNumber))
	logger.Info("generating scene",
		zap.String("scene_type", s.SceneType),
		zap.Int("duration_seconds", s.DurationSeconds),
	)

	refImages, err := g.resolveReferences(s, refs)
	if err != nil {
		return "", sceneError(s, err)
	}
	if err := video.ValidateClip(s.DurationSeconds, len(refImages)); err != nil {
		return "", sceneError(s, err)
	}

	logger.Debug("generating start frame")
	startFrame, err := g.frame(ctx, s.StartFramePrompt)
	if err != nil {
		return "", sceneError(s, fmt.Errorf("start frame: %w", err))
	}
	logger.Debug("generating end frame")
	endFrame, err := g.frame(ctx, s.EndFramePrompt)
	if err != nil {
		return "", sceneError(s, fmt.Errorf("end frame: %w", err))
	}

	req := &video.GenerateRequest{
		Prompt:          s.VideoPrompt,
		StartFrame:      startFrame,
		EndFrame:        endFrame,
		DurationSeconds: s.DurationSeconds,
		ReferenceImages: refImages,
	}
	start := time.Now()
	clip, err := g.videos.GenerateVideo(ctx, req)
	g.collector.RecordProviderCall(g.videos.Name(), "generate_video", err, time.Since(start))
	if err != nil {
		return "", sceneError(s, err)
	}

	path = g.layout.ScenePath(s.SceneNumber)
	if err := WriteAsset(path, clip); err != nil {
		return "", sceneError(s, err)
	}
	g.collector.RecordAsset(metrics.AssetSceneClip, len(clip))

	logger.Info("scene saved", zap.String("path", path), zap.Int("bytes", len(clip)))
	return path, nil
}

// resolveReferences maps reference names to image bytes, in scene order.
func (g *SceneVideoGenerator) resolveReferences(s Scene, refs ReferenceMap) ([][]byte, error) {
	if len(s.ReferenceImages) == 0 {
		return nil, nil
	}
	images := make([][]byte, 0, len(s.ReferenceImages))
	for _, name := range s.ReferenceImages {
		path, ok := refs[name]
		if !ok {
			return nil, types.NewErrorf(types.ErrLookup, "no reference image for character %q", name)
		}
		data, err := readReference(name, path)
		if err != nil {
			return nil, err
		}
		images = append(images, data)
	}
	g.logger.Debug("loaded character references",
		zap.Int("scene", s.SceneNumber),
		zap.Strings("characters", s.ReferenceImages),
	)
	return images, nil
}

func (g *SceneVideoGenerator) frame(ctx context.Context, prompt string) ([]byte, error) {
	start := time.Now()
	data, err := g.images.GenerateImage(ctx, prompt)
	g.collector.RecordProviderCall(g.images.Name(), "generate_image", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, types.NewError(types.ErrProvider, "image provider returned no bytes").WithProvider(g.images.Name())
	}
	return data, nil
}

func sceneError(s Scene, err error) error {
	return fmt.Errorf("scene %d: %w", s.SceneNumber, err)
}
