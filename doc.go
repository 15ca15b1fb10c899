// Package aifunc exposes host functions to an LLM tool-caller as schema-described
// tools, and validates every call before it reaches the host code.
//
// # Overview
//
// A function is described once, with Field and Object descriptors, and that single
// descriptor tree drives both the manifest shown to the agent and the validation of
// the arguments the agent sends back.
//
// Pipeline: descriptors → NewFunction(...).Args(...).Implement(...).Build() → Function →
// Registry.Register → Manifests (advertise) → Call / CallObject / Execute (validate,
// run, validate the result).
//
// # Key concepts
//
//   - Positional and keyed calls: Call takes arguments in declared order; CallObject
//     takes them keyed by parameter name and reconciles them into the same order.
//   - Validate before execute: rejected arguments never reach the implementation.
//     The error is a *ValidationError naming the parameter, meant for self-correction.
//   - Shallow by default: Object arguments and array elements are not checked unless
//     the function is built WithDeepValidation.
//
// # Example
//
//	add := aifunc.NewFunction("add", "Add two numbers").
//	    Args(aifunc.Number("a", "First").AsRequired(), aifunc.Number("b", "Second").AsRequired()).
//	    Returns(aifunc.Number("sum", "a + b")).
//	    Implement(func(_ context.Context, args []any) (any, error) {
//	        return args[0].(float64) + args[1].(float64), nil
//	    }).
//	    MustBuild()
//	reg := aifunc.NewRegistry()
//	reg.Register(add)
//	sum, err := reg.Call(ctx, "add", 2, 3) // 5.0
package aifunc
