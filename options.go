package aifunc

import (
	"context"
	"time"
)

// functionOptions hold optional function settings (deep validation, tags, etc.).
type functionOptions struct {
	deep      bool
	tags      []string
	version   string
	dangerous bool
}

func (o functionOptions) clone() functionOptions {
	o.tags = append([]string(nil), o.tags...)
	return o
}

// FunctionOption configures a function (e.g. WithDeepValidation, WithTags).
type FunctionOption func(*functionOptions)

// WithDeepValidation validates Object arguments and arrays with item descriptors
// against their full nested shape instead of accepting any value.
func WithDeepValidation() FunctionOption {
	return func(o *functionOptions) {
		o.deep = true
	}
}

// WithTags sets function tags (metadata for discovery/orchestrator).
func WithTags(tags ...string) FunctionOption {
	return func(o *functionOptions) {
		o.tags = tags
	}
}

// WithVersion sets the function version.
func WithVersion(version string) FunctionOption {
	return func(o *functionOptions) {
		o.version = version
	}
}

// WithDangerous marks the function as dangerous (orchestrator may require confirmation).
func WithDangerous() FunctionOption {
	return func(o *functionOptions) {
		o.dangerous = true
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	maxConcurrency int
	recoverPanics  bool
	middlewares    []Middleware
	onBefore       func(context.Context, string, []any)
	onAfter        func(context.Context, CallSummary)
}

// CallSummary is passed to the after-call hook (WithOnAfterCall) when a call finishes.
type CallSummary struct {
	Function string
	Result   any
	Error    error
	Duration time.Duration
}

// WithMaxConcurrency limits how many calls of one ExecuteBatch run at the same time.
// Pass 0 or negative to disable the limit.
func WithMaxConcurrency(n int) RegistryOption {
	return func(o *registryOptions) {
		o.maxConcurrency = n
	}
}

// WithRecoverPanics enables panic recovery around implementations (returns ImplementationError).
func WithRecoverPanics(enable bool) RegistryOption {
	return func(o *registryOptions) {
		o.recoverPanics = enable
	}
}

// WithMiddleware sets the initial middleware chain (see Registry.Use).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(o *registryOptions) {
		o.middlewares = mw
	}
}

// WithOnBeforeCall sets a hook called before each call, after the function was found.
func WithOnBeforeCall(fn func(ctx context.Context, name string, args []any)) RegistryOption {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterCall sets a hook called after each call of a registered function.
func WithOnAfterCall(fn func(ctx context.Context, summary CallSummary)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}
