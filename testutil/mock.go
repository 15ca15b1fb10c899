// Package testutil provides test helpers for aifunc (e.g. CountingImplementation).
package testutil

import (
	"context"
	"sync"

	"github.com/skosovsky/aifunc"
)

// CountingImplementation is a configurable implementation for tests. It records
// every invocation; pass its Implement method to FunctionBuilder.Implement.
type CountingImplementation struct {
	Result any
	Err    error
	Fn     func(ctx context.Context, args []any) (any, error)

	mu       sync.Mutex
	calls    int
	lastArgs []any
}

// Implement runs Fn if set, otherwise returns Result and Err.
func (c *CountingImplementation) Implement(ctx context.Context, args []any) (any, error) {
	c.mu.Lock()
	c.calls++
	c.lastArgs = append([]any(nil), args...)
	c.mu.Unlock()
	if c.Fn != nil {
		return c.Fn(ctx, args)
	}
	return c.Result, c.Err
}

// Calls returns how many times the implementation ran.
func (c *CountingImplementation) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// LastArgs returns a copy of the arguments of the most recent invocation.
func (c *CountingImplementation) LastArgs() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.lastArgs...)
}

// Ensure Implement satisfies aifunc.Implementation.
var _ aifunc.Implementation = (*CountingImplementation)(nil).Implement
