package aifunc

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	attrFunction = attribute.Key("aifunc.function")
	attrOutcome  = attribute.Key("aifunc.outcome")
)

// WithTracing returns a middleware that wraps every call in a span named
// "aifunc.call <function>". Failed calls record the error and set an error status.
// A panic is recorded on the span with outcome "panic" and then re-raised, so the
// registry's recovery (or an outer WithRecovery) still turns it into an error.
func WithTracing(tracer trace.Tracer) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, fn *Function, args []any) (any, error) {
			ctx, span := tracer.Start(ctx, "aifunc.call "+fn.Name(),
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrFunction.String(fn.Name())),
			)
			defer func() {
				if p := recover(); p != nil {
					perr := &panicError{p: p}
					span.RecordError(perr)
					span.SetStatus(codes.Error, perr.Error())
					span.SetAttributes(attrOutcome.String("panic"))
					span.End()
					panic(p)
				}
				span.End()
			}()
			res, err := next(ctx, fn, args)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attrOutcome.String(outcome(err)))
				return nil, err
			}
			span.SetAttributes(attrOutcome.String(outcome(nil)))
			return res, nil
		}
	}
}

// WithMetrics returns a middleware that counts calls ("aifunc.calls") and records
// their duration in seconds ("aifunc.call.duration"), both tagged with the function
// name and the outcome.
func WithMetrics(meter metric.Meter) (Middleware, error) {
	calls, err := meter.Int64Counter("aifunc.calls",
		metric.WithDescription("Number of function calls."))
	if err != nil {
		return nil, fmt.Errorf("create calls counter: %w", err)
	}
	duration, err := meter.Float64Histogram("aifunc.call.duration",
		metric.WithDescription("Duration of function calls."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return func(next Invoker) Invoker {
		return func(ctx context.Context, fn *Function, args []any) (any, error) {
			start := time.Now()
			res, err := next(ctx, fn, args)
			attrs := metric.WithAttributes(attrFunction.String(fn.Name()), attrOutcome.String(outcome(err)))
			calls.Add(ctx, 1, attrs)
			duration.Record(ctx, time.Since(start).Seconds(), attrs)
			return res, err
		}
	}, nil
}

// outcome classifies err for span and metric attributes.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsValidationError(err):
		return "invalid"
	case IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}
