package aifunc

import (
	"context"
	"fmt"
	"slices"
)

// Implementation is the host code bound to a Function. It receives the validated
// arguments in declared parameter order, one slot per parameter; an absent optional
// argument is nil.
type Implementation func(ctx context.Context, args []any) (any, error)

// Function describes one tool callable by the agent. Functions are built with
// NewFunction and never change after Build.
type Function struct {
	name        string
	description string
	params      []Param
	returns     Param
	impl        Implementation
	validators  []validator
	output      validator
	opts        functionOptions
}

// FunctionBuilder assembles a Function. It is not safe for concurrent use.
type FunctionBuilder struct {
	name        string
	description string
	params      []Param
	returns     Param
	impl        Implementation
	opts        functionOptions
}

// NewFunction starts building a function with the given registry name and description.
func NewFunction(name, description string, opts ...FunctionOption) *FunctionBuilder {
	b := &FunctionBuilder{name: name, description: description}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// Args replaces the parameter list. Calling it again discards the previous list.
func (b *FunctionBuilder) Args(params ...Param) *FunctionBuilder {
	b.params = slices.Clone(params)
	return b
}

// Returns sets the descriptor the implementation's result is validated against.
func (b *FunctionBuilder) Returns(p Param) *FunctionBuilder {
	b.returns = p
	return b
}

// Implement binds the implementation.
func (b *FunctionBuilder) Implement(fn Implementation) *FunctionBuilder {
	b.impl = fn
	return b
}

// Build checks the descriptor tree, derives one validator per parameter and returns
// the Function. It fails with ErrNotImplemented when Implement was never called with
// a non-nil function, and with ErrInvalidDescriptor for malformed descriptors.
func (b *FunctionBuilder) Build() (*Function, error) {
	if b.name == "" {
		return nil, fmt.Errorf("%w: function name must not be empty", ErrInvalidDescriptor)
	}
	if b.impl == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, b.name)
	}
	if err := checkParams(b.name, b.params); err != nil {
		return nil, err
	}
	f := &Function{
		name:        b.name,
		description: b.description,
		params:      slices.Clone(b.params),
		returns:     b.returns,
		impl:        b.impl,
		validators:  make([]validator, len(b.params)),
		opts:        b.opts.clone(),
	}
	for i, p := range f.params {
		v, err := validatorFor(p, f.opts.deep)
		if err != nil {
			return nil, err
		}
		f.validators[i] = v
	}
	if f.returns != nil {
		if err := f.returns.check(); err != nil {
			return nil, err
		}
		v, err := validatorFor(f.returns, f.opts.deep)
		if err != nil {
			return nil, err
		}
		f.output = v
	}
	return f, nil
}

// MustBuild is like Build but panics on error. Use it for functions declared at startup.
func (b *FunctionBuilder) MustBuild() *Function {
	f, err := b.Build()
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Function) Name() string        { return f.name }
func (f *Function) Description() string { return f.description }

// Params returns a copy of the ordered parameter list.
func (f *Function) Params() []Param { return slices.Clone(f.params) }

// ReturnType returns the result descriptor, if one was set.
func (f *Function) ReturnType() (Param, bool) { return f.returns, f.returns != nil }

func (f *Function) Tags() []string    { return append([]string(nil), f.opts.tags...) }
func (f *Function) Version() string   { return f.opts.version }
func (f *Function) IsDangerous() bool { return f.opts.dangerous }

// Execute validates args against the parameter list, calls the implementation and
// validates its result against the return descriptor.
//
// Arguments are positional. Fewer arguments than parameters leaves the rest Missing;
// more is a ValidationError. When the arguments are rejected the implementation is
// not called. A rejected result is still a ValidationError, but whatever the
// implementation did has already happened.
func (f *Function) Execute(ctx context.Context, args ...any) (any, error) {
	in, err := f.validateInput(args)
	if err != nil {
		return nil, err
	}
	out, err := f.impl(ctx, in)
	if err != nil {
		return nil, wrapImplementationError(f.name, err)
	}
	return f.validateOutput(out)
}

func (f *Function) validateInput(args []any) ([]any, error) {
	if len(args) > len(f.params) {
		return nil, &ValidationError{
			Function: f.name,
			Position: -1,
			Phase:    PhaseInput,
			Reason:   fmt.Sprintf("expected at most %d arguments, got %d", len(f.params), len(args)),
		}
	}
	in := make([]any, len(f.params))
	for i, p := range f.params {
		v := Missing
		if i < len(args) {
			v = args[i]
		}
		cv, err := f.validators[i](v)
		if err != nil {
			return nil, &ValidationError{
				Function: f.name,
				Param:    p.Name(),
				Position: i,
				Phase:    PhaseInput,
				Reason:   err.Error(),
			}
		}
		in[i] = cv
	}
	return in, nil
}

func (f *Function) validateOutput(out any) (any, error) {
	if f.output == nil {
		return out, nil
	}
	cv, err := f.output(out)
	if err != nil {
		return nil, &ValidationError{
			Function: f.name,
			Param:    f.returns.Name(),
			Position: -1,
			Phase:    PhaseOutput,
			Reason:   err.Error(),
		}
	}
	return cv, nil
}

// argsFromObject reconciles a keyed call into positional order. Objects are looked
// up by their own name, not destructured; keys that match no parameter are ignored.
func (f *Function) argsFromObject(byKey map[string]any) []any {
	args := make([]any, len(f.params))
	for i, p := range f.params {
		v, ok := byKey[p.Name()]
		if !ok {
			v = Missing
		}
		args[i] = v
	}
	return args
}
