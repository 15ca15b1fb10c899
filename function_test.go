package aifunc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAdd builds the two-number "add" function; calls counts implementation runs.
func newAdd(calls *int) *Function {
	return NewFunction("add", "Add two numbers").
		Args(Number("a", "First").AsRequired(), Number("b", "Second").AsRequired()).
		Returns(Number("sum", "a + b")).
		Implement(func(_ context.Context, args []any) (any, error) {
			*calls++
			return args[0].(float64) + args[1].(float64), nil
		}).
		MustBuild()
}

func TestNewFunction_Accessors(t *testing.T) {
	var calls int
	fn := newAdd(&calls)
	assert.Equal(t, "add", fn.Name())
	assert.Equal(t, "Add two numbers", fn.Description())
	params := fn.Params()
	require.Len(t, params, 2)
	assert.Equal(t, "a", params[0].Name())
	assert.Equal(t, "b", params[1].Name())
	ret, ok := fn.ReturnType()
	require.True(t, ok)
	assert.Equal(t, "sum", ret.Name())
}

func TestNewFunction_ArgsLastCallWins(t *testing.T) {
	fn := NewFunction("f", "").
		Args(String("x", ""), String("y", "")).
		Args(Number("z", "")).
		Implement(nopImpl).
		MustBuild()
	params := fn.Params()
	require.Len(t, params, 1)
	assert.Equal(t, "z", params[0].Name())
}

func TestNewFunction_Build_NotImplemented(t *testing.T) {
	_, err := NewFunction("f", "").Args(String("x", "")).Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotImplemented)

	_, err = NewFunction("f", "").Implement(nil).Build()
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestNewFunction_Build_Invalid(t *testing.T) {
	tests := []struct {
		name string
		b    *FunctionBuilder
	}{
		{"empty name", NewFunction("", "").Implement(nopImpl)},
		{"duplicate params", NewFunction("f", "").Args(String("a", ""), Number("a", "")).Implement(nopImpl)},
		{"bad kind", NewFunction("f", "").Args(NewField("a", Kind(9), "")).Implement(nopImpl)},
		{"bad return", NewFunction("f", "").Returns(NewField("", KindString, "")).Implement(nopImpl)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDescriptor)
		})
	}
}

func TestNewFunction_MustBuild_Panics(t *testing.T) {
	assert.Panics(t, func() {
		NewFunction("f", "").MustBuild()
	})
}

func TestNewFunction_BuilderIsolation(t *testing.T) {
	params := []Param{String("a", "")}
	b := NewFunction("f", "").Args(params...).Implement(nopImpl)
	params[0] = Number("z", "")
	fn := b.MustBuild()
	assert.Equal(t, "a", fn.Params()[0].Name())

	got := fn.Params()
	got[0] = Boolean("q", "")
	assert.Equal(t, "a", fn.Params()[0].Name())
}

func TestExecute_Success(t *testing.T) {
	var calls int
	fn := newAdd(&calls)
	got, err := fn.Execute(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)
	assert.Equal(t, 1, calls)
}

func TestExecute_ValidateBeforeExecute(t *testing.T) {
	var calls int
	fn := newAdd(&calls)

	_, err := fn.Execute(context.Background(), 2, "x")
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "add", ve.Function)
	assert.Equal(t, "b", ve.Param)
	assert.Equal(t, 1, ve.Position)
	assert.Equal(t, PhaseInput, ve.Phase)
	assert.Contains(t, ve.Error(), "(b)")
	assert.Equal(t, 0, calls, "implementation must not run on invalid input")
}

func TestExecute_Arity(t *testing.T) {
	var calls int
	fn := newAdd(&calls)

	_, err := fn.Execute(context.Background(), 1)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "b", ve.Param)
	assert.Equal(t, "is required", ve.Reason)

	_, err = fn.Execute(context.Background(), 1, 2, 3)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, -1, ve.Position)
	assert.Equal(t, "expected at most 2 arguments, got 3", ve.Reason)
	assert.Equal(t, 0, calls)
}

func TestExecute_ZeroParams(t *testing.T) {
	fn := NewFunction("now", "Current time").
		Implement(func(context.Context, []any) (any, error) { return "noon", nil }).
		MustBuild()
	got, err := fn.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "noon", got)

	_, err = fn.Execute(context.Background(), "extra")
	assert.True(t, IsValidationError(err))
}

func TestExecute_OptionalArgsReachAsNil(t *testing.T) {
	var seen []any
	fn := NewFunction("greet", "").
		Args(String("name", "").AsRequired(), String("title", "")).
		Implement(func(_ context.Context, args []any) (any, error) {
			seen = args
			return nil, nil
		}).
		MustBuild()
	_, err := fn.Execute(context.Background(), "Ada")
	require.NoError(t, err)
	assert.Equal(t, []any{"Ada", nil}, seen)
}

func TestExecute_ImplementationError(t *testing.T) {
	sentinel := errors.New("storage unavailable")
	fn := NewFunction("f", "").
		Implement(func(context.Context, []any) (any, error) { return nil, sentinel }).
		MustBuild()
	_, err := fn.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	var ie *ImplementationError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "f", ie.Function)
}

func TestExecute_ImplementationValidationErrorPassesThrough(t *testing.T) {
	own := &ValidationError{Function: "f", Param: "q", Reason: "unknown city"}
	fn := NewFunction("f", "").
		Implement(func(context.Context, []any) (any, error) { return nil, own }).
		MustBuild()
	_, err := fn.Execute(context.Background())
	assert.Same(t, own, err)
}

func TestExecute_OutputValidation(t *testing.T) {
	var calls int
	fn := NewFunction("bad_sum", "").
		Args(Number("a", "").AsRequired()).
		Returns(Number("sum", "")).
		Implement(func(context.Context, []any) (any, error) {
			calls++
			return "five", nil
		}).
		MustBuild()
	_, err := fn.Execute(context.Background(), 1)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, PhaseOutput, ve.Phase)
	assert.Equal(t, "sum", ve.Param)
	assert.Equal(t, 1, calls, "output validation happens after the implementation ran")
}

func TestExecute_OutputCoerced(t *testing.T) {
	fn := NewFunction("count", "").
		Returns(Number("n", "")).
		Implement(func(context.Context, []any) (any, error) { return 3, nil }).
		MustBuild()
	got, err := fn.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
}

func TestExecute_NoReturnTypeUnchecked(t *testing.T) {
	fn := NewFunction("any", "").
		Implement(func(context.Context, []any) (any, error) { return struct{ X int }{1}, nil }).
		MustBuild()
	got, err := fn.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, struct{ X int }{1}, got)
}

func TestExecute_ObjectParamShallow(t *testing.T) {
	obj := NewObject("filter", "").Field(String("q", "").AsRequired()).Required().MustBuild()
	var seen any
	fn := NewFunction("search", "").
		Args(obj).
		Implement(func(_ context.Context, args []any) (any, error) {
			seen = args[0]
			return nil, nil
		}).
		MustBuild()
	_, err := fn.Execute(context.Background(), 42)
	require.NoError(t, err, "object parameters accept any present value")
	assert.Equal(t, 42, seen)

	_, err = fn.Execute(context.Background())
	assert.True(t, IsValidationError(err), "a required object must still be present")
}

func TestExecute_DeepValidation(t *testing.T) {
	var calls int
	obj := NewObject("filter", "").Field(String("q", "").AsRequired()).MustBuild()
	fn := NewFunction("search", "", WithDeepValidation()).
		Args(obj).
		Implement(func(context.Context, []any) (any, error) {
			calls++
			return nil, nil
		}).
		MustBuild()

	_, err := fn.Execute(context.Background(), map[string]any{"q": "go"})
	require.NoError(t, err)

	_, err = fn.Execute(context.Background(), map[string]any{"q": 1})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "filter", ve.Param)
	assert.Equal(t, 0, ve.Position)
	assert.Equal(t, 1, calls)
}
