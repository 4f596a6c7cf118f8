package langprompt

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/langprompt/langprompt-go/transport"
)

// Observer receives lifecycle callbacks around every request attempt.
// Observers are held by the client instance as an ordered list, never as
// ambient global state.
type Observer = transport.Observer

// RequestInfo describes the attempt about to run.
type RequestInfo = transport.RequestInfo

// ResponseInfo describes a completed attempt.
type ResponseInfo = transport.ResponseInfo

// Ensure the provided observers satisfy the interface.
var (
	_ Observer = (*LogObserver)(nil)
	_ Observer = (*TraceObserver)(nil)
)

// LogObserver logs request lifecycle events through slog. The credential is
// never part of the observed information, so nothing here can leak it.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver. A nil logger means slog.Default.
func NewLogObserver(l *slog.Logger) *LogObserver {
	if l == nil {
		l = slog.Default()
	}
	return &LogObserver{logger: l}
}

// OnRequest logs the attempt at debug level.
func (o *LogObserver) OnRequest(ctx context.Context, info RequestInfo) context.Context {
	o.logger.DebugContext(ctx, "langprompt request",
		"method", info.Method, "path", info.Path, "attempt", info.Attempt)
	return ctx
}

// OnResponse logs the outcome at debug level.
func (o *LogObserver) OnResponse(ctx context.Context, info ResponseInfo) {
	o.logger.DebugContext(ctx, "langprompt response",
		"method", info.Method, "path", info.Path, "status", info.Status,
		"attempt", info.Attempt, "duration", info.Duration)
}

// OnError logs the failure at warn level.
func (o *LogObserver) OnError(ctx context.Context, info RequestInfo, err error) {
	o.logger.WarnContext(ctx, "langprompt request failed",
		"method", info.Method, "path", info.Path, "attempt", info.Attempt, "err", err)
}

// instrumentationName identifies this module to the tracer provider.
const instrumentationName = "github.com/langprompt/langprompt-go"

// TraceObserver emits one span per attempt through OpenTelemetry. The span
// started in OnRequest travels in the returned context and is closed in
// OnResponse or OnError.
type TraceObserver struct {
	tracer trace.Tracer
}

// NewTraceObserver creates a TraceObserver. A nil provider means the global
// otel provider.
func NewTraceObserver(tp trace.TracerProvider) *TraceObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TraceObserver{tracer: tp.Tracer(instrumentationName)}
}

// OnRequest starts the attempt span.
func (o *TraceObserver) OnRequest(ctx context.Context, info RequestInfo) context.Context {
	ctx, _ = o.tracer.Start(ctx, info.Method+" "+info.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", info.Method),
			attribute.String("url.path", info.Path),
			attribute.Int("langprompt.attempt", info.Attempt),
		))
	return ctx
}

// OnResponse records the status and ends the span.
func (o *TraceObserver) OnResponse(ctx context.Context, info ResponseInfo) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("http.response.status_code", info.Status))
	span.End()
}

// OnError records the failure and ends the span.
func (o *TraceObserver) OnError(ctx context.Context, info RequestInfo, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}
