package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/agribharat/agribharat-api/internal/domain"
	"github.com/agribharat/agribharat-api/internal/observability"
)

// Instrumented wraps an LLM client with a span, a latency histogram and a
// call counter. It uses the global otel providers, which are no-op until
// observability.InitTelemetry runs.
type Instrumented struct {
	next     domain.LLMClient
	provider string
	tracer   trace.Tracer
	latency  metric.Float64Histogram
	calls    metric.Int64Counter
}

func NewInstrumented(next domain.LLMClient, provider string) *Instrumented {
	meter := otel.Meter(observability.InstrumentationName)

	latency, err := meter.Float64Histogram(
		"llm.request.duration",
		metric.WithDescription("LLM request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		observability.Logger().Warn("failed to create histogram", "error", err)
	}
	calls, err := meter.Int64Counter(
		"llm.requests",
		metric.WithDescription("LLM requests by provider and outcome"),
	)
	if err != nil {
		observability.Logger().Warn("failed to create counter", "error", err)
	}

	return &Instrumented{
		next:     next,
		provider: provider,
		tracer:   otel.Tracer(observability.InstrumentationName),
		latency:  latency,
		calls:    calls,
	}
}

func (i *Instrumented) GenerateReply(ctx context.Context, prompt domain.Prompt) (string, error) {
	ctx, span := i.tracer.Start(ctx, i.provider+"_api_call")
	defer span.End()

	span.SetAttributes(
		attribute.String("llm.provider", i.provider),
		attribute.Bool("llm.has_image", prompt.Image != nil),
		attribute.Int("llm.prompt_chars", len(prompt.System)+len(prompt.User)),
	)

	start := time.Now()
	reply, err := i.next.GenerateReply(ctx, prompt)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	attrs := metric.WithAttributes(
		attribute.String("provider", i.provider),
		attribute.String("outcome", outcome),
	)
	if i.latency != nil {
		i.latency.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	}
	if i.calls != nil {
		i.calls.Add(ctx, 1, attrs)
	}

	observability.LoggerFromContext(ctx).Debug("llm call finished",
		"provider", i.provider,
		"outcome", outcome,
		"duration_ms", elapsed.Milliseconds(),
	)

	return reply, err
}
