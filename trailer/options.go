package trailer

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/trailerflow/internal/metrics"
)

const tracerName = "github.com/BaSui01/trailerflow/trailer"

// instruments bundles logging, metrics and tracing for the generators.
type instruments struct {
	logger    *zap.Logger
	collector *metrics.Collector
	tracer    trace.Tracer
}

// Option configures a generator or the Pipeline.
type Option func(*instruments)

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(in *instruments) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithCollector records provider calls, assets and scene outcomes.
func WithCollector(c *metrics.Collector) Option {
	return func(in *instruments) { in.collector = c }
}

// WithTracer replaces the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(in *instruments) { in.tracer = t }
}

func newInstruments(component string, opts []Option) instruments {
	in := instruments{
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&in)
	}
	in.logger = in.logger.With(zap.String("component", component))
	return in
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
