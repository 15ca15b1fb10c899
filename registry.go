package aifunc

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Registry maps function names to Functions and dispatches calls to them.
//
// A Registry is an explicit value: construct one at startup with NewRegistry, register
// every function, then hand the same *Registry to whatever serves agent calls. All
// methods are safe for concurrent use.
type Registry struct {
	functions map[string]*Function
	invoke    Invoker // base dispatch wrapped with middlewares
	sem       chan struct{}
	opts      registryOptions
	done      chan struct{}
	running   sync.WaitGroup
	mu        sync.RWMutex
}

// NewRegistry creates an empty Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{
		maxConcurrency: 10,
		recoverPanics:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	r := &Registry{
		functions: make(map[string]*Function),
		sem:       sem,
		opts:      o,
		done:      make(chan struct{}),
	}
	r.invoke = chainMiddlewares(dispatch, o.middlewares)
	return r
}

// Register adds fn under fn.Name(). If a function with the same name already exists,
// it is replaced. Like MustBuild it panics when fn did not come from Build.
func (r *Registry) Register(fn *Function) {
	if err := checkRegistrable(fn); err != nil {
		panic(err)
	}
	r.RegisterAs(fn.Name(), fn)
}

// RegisterAs adds fn under name, replacing any previous entry for name.
// It panics when fn is nil or has no implementation bound.
func (r *Registry) RegisterAs(name string, fn *Function) {
	if err := checkRegistrable(fn); err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[name] = fn
}

func checkRegistrable(fn *Function) error {
	if fn == nil {
		return fmt.Errorf("%w: nil function", ErrInvalidDescriptor)
	}
	if fn.impl == nil {
		return fmt.Errorf("%w: %q was not built with NewFunction", ErrNotImplemented, fn.name)
	}
	return nil
}

// Lookup returns the function registered under name, or (nil, false) if not found.
func (r *Registry) Lookup(name string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	return fn, ok
}

// Functions returns all registered functions, sorted by registry name.
func (r *Registry) Functions() []*Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]*Function, 0, len(names))
	for _, name := range names {
		out = append(out, r.functions[name])
	}
	return out
}

// Manifests returns the "available tools" advertisement: one manifest per registered
// function, sorted by registry name.
func (r *Registry) Manifests() []Manifest {
	fns := r.Functions()
	out := make([]Manifest, len(fns))
	for i, fn := range fns {
		out[i] = fn.Manifest()
	}
	return out
}

// Call invokes the function registered under name with positional arguments.
// It fails with a *NotFoundError when name is unknown, a *ValidationError when the
// arguments or the result do not match the descriptors, and an *ImplementationError
// when the implementation fails.
func (r *Registry) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, err := r.acquire(name)
	if err != nil {
		return nil, err
	}
	defer r.running.Done()
	return r.call(ctx, fn, name, args)
}

// CallObject invokes the function registered under name with arguments keyed by
// parameter name. Each parameter takes args[param.Name()]; an absent key is Missing.
// Errors are the same as Call.
func (r *Registry) CallObject(ctx context.Context, name string, args map[string]any) (any, error) {
	fn, err := r.acquire(name)
	if err != nil {
		return nil, err
	}
	defer r.running.Done()
	return r.call(ctx, fn, name, fn.argsFromObject(args))
}

// acquire looks name up and marks one call in flight. The caller must call r.running.Done.
func (r *Registry) acquire(name string) (*Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	select {
	case <-r.done:
		return nil, ErrShutdown
	default:
	}
	fn, ok := r.functions[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	r.running.Add(1)
	return fn, nil
}

func (r *Registry) call(ctx context.Context, fn *Function, name string, args []any) (res any, err error) {
	start := time.Now()
	// The after-call hook always runs with the final outcome. The recover defer is
	// registered after it so it runs first and sets err before the hook sees it.
	if r.opts.onAfter != nil {
		defer func() {
			r.opts.onAfter(ctx, CallSummary{
				Function: name,
				Result:   res,
				Error:    err,
				Duration: time.Since(start),
			})
		}()
	}
	if r.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				res = nil
				err = &ImplementationError{Function: fn.Name(), Err: &panicError{p: p}}
			}
		}()
	}
	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, name, args)
	}
	r.mu.RLock()
	invoke := r.invoke
	r.mu.RUnlock()
	return invoke(ctx, fn, args)
}

// Shutdown closes the registry for new calls and waits for in-flight calls or ctx to cancel.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return nil
	default:
		close(r.done)
	}
	r.mu.Unlock()
	done := make(chan struct{})
	go func() {
		r.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatch is the innermost Invoker: validate, run, validate the result.
func dispatch(ctx context.Context, fn *Function, args []any) (any, error) {
	return fn.Execute(ctx, args...)
}
