package aifunc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ToolCall is a single invocation request as produced by the agent. Args is either a
// JSON array (positional call) or a JSON object (keyed call); empty or null means a
// keyed call with no arguments.
type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

// NewToolCall returns a ToolCall with a fresh random ID.
func NewToolCall(name string, args json.RawMessage) ToolCall {
	return ToolCall{ID: uuid.NewString(), Name: name, Args: args}
}

// Result is the outcome of one ToolCall. Output holds the JSON-encoded return value
// when Error is nil.
type Result struct {
	CallID string
	Name   string
	Output json.RawMessage
	Error  error
}

// Execute decodes call.Args, dispatches to Call or CallObject and encodes the result.
// Malformed arguments are reported as a *ValidationError.
func (r *Registry) Execute(ctx context.Context, call ToolCall) Result {
	res := Result{CallID: call.ID, Name: call.Name}
	var out any
	positional, keyed, err := decodeArgs(call.Name, call.Args)
	switch {
	case err != nil:
		res.Error = err
		return res
	case positional != nil:
		out, err = r.Call(ctx, call.Name, positional...)
	default:
		out, err = r.CallObject(ctx, call.Name, keyed)
	}
	if err != nil {
		res.Error = err
		return res
	}
	data, err := json.Marshal(out)
	if err != nil {
		res.Error = &ImplementationError{Function: call.Name, Err: fmt.Errorf("encode result: %w", err)}
		return res
	}
	res.Output = data
	return res
}

// ExecuteBatch runs all calls in parallel (bounded by WithMaxConcurrency) and returns
// one Result per call in input order. A failing call never cancels the others.
func (r *Registry) ExecuteBatch(ctx context.Context, calls []ToolCall) []Result {
	results := make([]Result, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Go(func() {
			if err := r.acquireSemaphore(ctx); err != nil {
				results[i] = Result{CallID: call.ID, Name: call.Name, Error: err}
				return
			}
			defer r.releaseSemaphore()
			results[i] = r.Execute(ctx, call)
		})
	}
	wg.Wait()
	return results
}

func (r *Registry) acquireSemaphore(ctx context.Context) error {
	if r.sem == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) releaseSemaphore() {
	if r.sem != nil {
		<-r.sem
	}
}

// decodeArgs returns exactly one of positional (non-nil, possibly empty) or keyed.
func decodeArgs(name string, raw json.RawMessage) (positional []any, keyed map[string]any, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, map[string]any{}, nil
	}
	switch trimmed[0] {
	case '[':
		positional = []any{}
		if err := json.Unmarshal(trimmed, &positional); err != nil {
			return nil, nil, argsParseError(name, err)
		}
		return positional, nil, nil
	case '{':
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return nil, nil, argsParseError(name, err)
		}
		return nil, keyed, nil
	default:
		return nil, nil, &ValidationError{
			Function: name,
			Position: -1,
			Phase:    PhaseInput,
			Reason:   "arguments must be a JSON object or array",
		}
	}
}

// argsParseError reports undecodable arguments so the agent can correct them.
func argsParseError(name string, err error) error {
	return &ValidationError{
		Function: name,
		Position: -1,
		Phase:    PhaseInput,
		Reason:   "json parse error: " + err.Error(),
	}
}
