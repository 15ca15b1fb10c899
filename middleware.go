package aifunc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Invoker dispatches one call of fn. The innermost Invoker validates the arguments,
// runs the implementation and validates its result.
type Invoker func(ctx context.Context, fn *Function, args []any) (any, error)

// Middleware wraps an Invoker with cross-cutting behavior (logging, recovery, timeout).
type Middleware func(next Invoker) Invoker

// Use replaces the middleware chain (onion order: first middleware is outermost).
// Calls already in flight keep the chain they started with.
func (r *Registry) Use(middlewares ...Middleware) {
	invoke := chainMiddlewares(dispatch, middlewares)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.middlewares = middlewares
	r.invoke = invoke
}

func chainMiddlewares(base Invoker, middlewares []Middleware) Invoker {
	invoke := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		invoke = middlewares[i](invoke)
	}
	return invoke
}

// WithLogging returns a middleware that logs start, end, duration, and errors.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Invoker) Invoker {
		return func(ctx context.Context, fn *Function, args []any) (any, error) {
			logger.InfoContext(ctx, "function start", "function", fn.Name(), "args", len(args))
			start := time.Now()
			res, err := next(ctx, fn, args)
			dur := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "function error", "function", fn.Name(), "duration", dur, "error", err)
				return nil, err
			}
			logger.InfoContext(ctx, "function end", "function", fn.Name(), "duration", dur)
			return res, nil
		}
	}
}

// WithRecovery returns a middleware that recovers panics and returns ImplementationError.
// Use it with WithRecoverPanics(false) to place recovery at a chosen point of the chain.
func WithRecovery() Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, fn *Function, args []any) (res any, err error) {
			defer func() {
				if p := recover(); p != nil {
					res = nil
					err = &ImplementationError{Function: fn.Name(), Err: &panicError{p: p}}
				}
			}()
			return next(ctx, fn, args)
		}
	}
}

// WithTimeoutMiddleware returns a middleware that runs each call under a context
// deadline of d. The registry itself imposes no timeout; implementations must honor
// ctx for the deadline to have an effect.
func WithTimeoutMiddleware(d time.Duration) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, fn *Function, args []any) (any, error) {
			if d <= 0 {
				return next(ctx, fn, args)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, fn, args)
		}
	}
}

// WithRateLimit returns a middleware that blocks each call until limiter grants a
// token. A call whose ctx ends first fails with the limiter's error and never runs.
// A nil limiter disables the middleware.
func WithRateLimit(limiter *rate.Limiter) Middleware {
	return func(next Invoker) Invoker {
		if limiter == nil {
			return next
		}
		return func(ctx context.Context, fn *Function, args []any) (any, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit %s: %w", fn.Name(), err)
			}
			return next(ctx, fn, args)
		}
	}
}
