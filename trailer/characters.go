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
	"github.com/BaSui01/trailerflow/types"
)

// CharacterReferenceGenerator turns character designs into reference images
// under refs/.
type CharacterReferenceGenerator struct {
	images image.Provider
	layout Layout
	instruments
}

// NewCharacterReferenceGenerator creates a generator writing under layout.
func NewCharacterReferenceGenerator(images image.Provider, layout Layout, opts ...Option) *CharacterReferenceGenerator {
	return &CharacterReferenceGenerator{
		images:      images,
		layout:      layout,
		instruments: newInstruments("characters", opts),
	}
}

// Generate processes designs in input order and stops at the first failure.
// The returned map holds every reference saved before the failure.
func (g *CharacterReferenceGenerator) Generate(ctx context.Context, designs []CharacterDesign) (ReferenceMap, error) {
	refs := make(ReferenceMap, len(designs))
	for i, d := range designs {
		g.logger.Info("generating character reference",
			zap.Int("index", i+1),
			zap.Int("total", len(designs)),
			zap.String("character", d.CharacterName),
		)
		path, err := g.GenerateReference(ctx, d)
		if err != nil {
			return refs, err
		}
		refs[d.CharacterName] = path
	}
	return refs, nil
}

// GenerateReference generates and saves one reference image and returns its
// path.
func (g *CharacterReferenceGenerator) GenerateReference(ctx context.Context, d CharacterDesign) (path string, err error) {
	ctx, span := g.tracer.Start(ctx, "trailer.character",
		trace.WithAttributes(attribute.String("character", d.CharacterName)))
	defer func() { endSpan(span, err) }()

	if verr := validateCharacterName(d.CharacterName); verr != nil {
		return "", types.NewError(types.ErrInvalidInput, verr.Error())
	}

	start := time.Now()
	data, err := g.images.GenerateImage(ctx, d.ImageGenerationPrompt)
	g.collector.RecordProviderCall(g.images.Name(), "generate_image", err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("character %q: %w", d.CharacterName, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("character %q: %w", d.CharacterName,
			types.NewError(types.ErrProvider, "image provider returned no bytes").WithProvider(g.images.Name()))
	}

	path = g.layout.RefPath(d.CharacterName)
	if err := WriteAsset(path, data); err != nil {
		return "", fmt.Errorf("character %q: %w", d.CharacterName, err)
	}
	g.collector.RecordAsset(metrics.AssetReference, len(data))

	g.logger.Info("character reference saved",
		zap.String("character", d.CharacterName),
		zap.String("path", path),
		zap.Int("bytes", len(data)),
	)
	return path, nil
}
