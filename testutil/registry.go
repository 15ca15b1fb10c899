package testutil

import (
	"github.com/skosovsky/aifunc"
)

// NewTestRegistry returns a Registry with panic recovery enabled and the given
// functions registered under their own names, suitable for tests.
func NewTestRegistry(fns ...*aifunc.Function) *aifunc.Registry {
	reg := aifunc.NewRegistry(
		aifunc.WithRecoverPanics(true),
	)
	for _, fn := range fns {
		reg.Register(fn)
	}
	return reg
}
