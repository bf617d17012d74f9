package trailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/trailerflow/internal/metrics"
	"github.com/BaSui01/trailerflow/llm/image"
	"github.com/BaSui01/trailerflow/llm/video"
	"github.com/BaSui01/trailerflow/types"
)

// FailurePolicy decides what a character failure does to the rest of a run.
type FailurePolicy string

const (
	// PolicyHalt stops the run at the first character failure; no scene is
	// generated.
	PolicyHalt FailurePolicy = "halt"
	// PolicySkip keeps going without the failed characters. Scenes that
	// reference them are skipped with a LOOKUP error in the manifest.
	PolicySkip FailurePolicy = "skip"
)

// Run modes recorded in the manifest.
const (
	ModeFull       = "full"
	ModeReferences = "refs"
	ModeScenes     = "scenes"
)

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	OutputRoot         string
	OnCharacterFailure FailurePolicy
	WriteManifest      bool
}

// Pipeline drives a breakdown through the character and scene generators.
type Pipeline struct {
	characters    *CharacterReferenceGenerator
	scenes        *SceneVideoGenerator
	layout        Layout
	policy        FailurePolicy
	writeManifest bool
	newRunID      func() string
	now           func() time.Time
	instruments
}

// NewPipeline wires both generators to one output root.
func NewPipeline(images image.Provider, videos video.Provider, cfg PipelineConfig, opts ...Option) (*Pipeline, error) {
	if cfg.OutputRoot == "" {
		return nil, types.NewError(types.ErrInvalidInput, "output root is required")
	}
	switch cfg.OnCharacterFailure {
	case "":
		cfg.OnCharacterFailure = PolicyHalt
	case PolicyHalt, PolicySkip:
	default:
		return nil, types.NewErrorf(types.ErrInvalidInput, "unknown character failure policy %q", cfg.OnCharacterFailure)
	}

	layout := NewLayout(cfg.OutputRoot)
	return &Pipeline{
		characters:    NewCharacterReferenceGenerator(images, layout, opts...),
		scenes:        NewSceneVideoGenerator(images, videos, layout, opts...),
		layout:        layout,
		policy:        cfg.OnCharacterFailure,
		writeManifest: cfg.WriteManifest,
		newRunID:      uuid.NewString,
		now:           time.Now,
		instruments:   newInstruments("pipeline", opts),
	}, nil
}

// Layout returns the output layout of the pipeline.
func (p *Pipeline) Layout() Layout { return p.layout }

// Run generates character references, then scene clips, then the manifest.
// The manifest is returned even when err is non-nil.
func (p *Pipeline) Run(ctx context.Context, b *Breakdown) (*Manifest, error) {
	return p.run(ctx, ModeFull, b, func(ctx context.Context, m *Manifest) error {
		refs, charErr := p.references(ctx, b.CharacterDesigns, m)
		if charErr != nil && p.policy == PolicyHalt {
			return charErr
		}
		if err := ctx.Err(); err != nil {
			return errors.Join(charErr, err)
		}
		return errors.Join(charErr, p.generateScenes(ctx, b.Scenes, refs, m))
	})
}

// RunReferences generates character references only.
func (p *Pipeline) RunReferences(ctx context.Context, b *Breakdown) (*Manifest, error) {
	return p.run(ctx, ModeReferences, b, func(ctx context.Context, m *Manifest) error {
		_, err := p.references(ctx, b.CharacterDesigns, m)
		return err
	})
}

// RunScenesOnly regenerates scene clips from the reference images already in
// refs/, without calling the image provider for characters.
func (p *Pipeline) RunScenesOnly(ctx context.Context, b *Breakdown) (*Manifest, error) {
	return p.run(ctx, ModeScenes, b, func(ctx context.Context, m *Manifest) error {
		refs, err := p.layout.ScanReferences()
		if err != nil {
			return err
		}
		m.References = refs
		p.logger.Info("loaded references from disk",
			zap.String("dir", p.layout.RefsDir()),
			zap.Strings("characters", refs.Names()),
		)
		return p.generateScenes(ctx, b.Scenes, refs, m)
	})
}

func (p *Pipeline) run(ctx context.Context, mode string, b *Breakdown, body func(context.Context, *Manifest) error) (*Manifest, error) {
	if b == nil {
		return nil, types.NewError(types.ErrInvalidInput, "breakdown is nil")
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	m := &Manifest{
		RunID:      p.newRunID(),
		Mode:       mode,
		OutputRoot: p.layout.Root,
		StartedAt:  p.now().UTC(),
		References: ReferenceMap{},
		Scenes:     []SceneRecord{},
	}

	ctx, span := p.tracer.Start(ctx, "trailer.run", trace.WithAttributes(
		attribute.String("run.id", m.RunID),
		attribute.String("run.mode", mode),
		attribute.Int("run.characters", len(b.CharacterDesigns)),
		attribute.Int("run.scenes", len(b.Scenes)),
	))

	logger := p.logger.With(zap.String("run_id", m.RunID), zap.String("mode", mode))
	logger.Info("run started",
		zap.String("output_root", p.layout.Root),
		zap.Int("characters", len(b.CharacterDesigns)),
		zap.Int("scenes", len(b.Scenes)),
		zap.String("on_character_failure", string(p.policy)),
	)

	err := body(ctx, m)
	m.FinishedAt = p.now().UTC()

	if p.writeManifest {
		if werr := p.saveManifest(m); werr != nil {
			err = errors.Join(err, werr)
		}
	}
	endSpan(span, err)

	fields := []zap.Field{
		zap.Int("references", len(m.References)),
		zap.Int("scenes_ok", len(m.ScenePaths())),
		zap.Int("character_failures", len(m.CharacterFailures)),
		zap.Duration("took", m.FinishedAt.Sub(m.StartedAt)),
	}
	if err != nil {
		logger.Error("run failed", append(fields, zap.Error(err))...)
		return m, err
	}
	logger.Info("run finished", fields...)
	return m, nil
}

// references generates reference images under the failure policy. The
// returned map only holds characters that succeeded.
func (p *Pipeline) references(ctx context.Context, designs []CharacterDesign, m *Manifest) (ReferenceMap, error) {
	refs := make(ReferenceMap, len(designs))
	var errs []error
	for i, d := range designs {
		if err := ctx.Err(); err != nil {
			return refs, errors.Join(append(errs, err)...)
		}
		p.logger.Info("generating character reference",
			zap.Int("index", i+1),
			zap.Int("total", len(designs)),
			zap.String("character", d.CharacterName),
		)
		path, err := p.characters.GenerateReference(ctx, d)
		if err != nil {
			m.addCharacterFailure(d.CharacterName, err)
			if p.policy == PolicyHalt {
				return refs, err
			}
			p.logger.Warn("character reference failed, continuing without it",
				zap.String("character", d.CharacterName),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		refs[d.CharacterName] = path
		m.References[d.CharacterName] = path
	}
	return refs, errors.Join(errs...)
}

// generateScenes runs the scene generator. Scene failures always stop the
// run; under PolicySkip scenes with a missing reference are skipped first.
func (p *Pipeline) generateScenes(ctx context.Context, scenes []Scene, refs ReferenceMap, m *Manifest) error {
	if p.policy == PolicyHalt {
		paths, err := p.scenes.Generate(ctx, scenes, refs)
		for i, path := range paths {
			m.addScene(scenes[i].SceneNumber, path)
		}
		if err != nil && len(paths) < len(scenes) {
			m.addSceneFailure(scenes[len(paths)].SceneNumber, SceneStatusFailed, err)
		}
		return err
	}

	var skipped []error
	for _, s := range scenes {
		if name, ok := missingReference(s, refs); ok {
			err := sceneError(s, types.NewErrorf(types.ErrLookup,
				"no reference image for character %q, scene skipped", name))
			p.logger.Warn("scene skipped", zap.Int("scene", s.SceneNumber), zap.String("character", name))
			p.collector.RecordScene(err)
			m.addSceneFailure(s.SceneNumber, SceneStatusSkipped, err)
			skipped = append(skipped, err)
			continue
		}

		path, err := p.scenes.GenerateScene(ctx, s, refs)
		if err != nil {
			m.addSceneFailure(s.SceneNumber, SceneStatusFailed, err)
			return errors.Join(append(skipped, err)...)
		}
		m.addScene(s.SceneNumber, path)
	}
	return errors.Join(skipped...)
}

func missingReference(s Scene, refs ReferenceMap) (string, bool) {
	for _, name := range s.ReferenceImages {
		if _, ok := refs[name]; !ok {
			return name, true
		}
	}
	return "", false
}

func (p *Pipeline) saveManifest(m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := WriteAsset(p.layout.ManifestPath(), data); err != nil {
		return err
	}
	p.collector.RecordAsset(metrics.AssetManifest, len(data))
	return nil
}
