package aifunc

import (
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// Param is a function parameter, a return type, or a child of an Object. It is
// implemented only by Field and *Object.
type Param interface {
	Name() string
	Description() string
	Required() bool

	// schema returns the manifest node advertised to the agent.
	schema() *jsonschema.Schema
	// validationSchema returns the raw JSON Schema used by deep validation.
	validationSchema() map[string]any
	check() error
}

// Field describes one scalar or array parameter, the leaves of a descriptor tree.
// A Field is a value; the constructors and AsRequired return fresh copies, so a
// Field reachable from a registered Function never changes.
//
// Array fields may carry the field descriptors of their elements. Elements are not
// described in the manifest (an array is advertised as an array of anything); they
// are only consulted by deep validation, where each element must be an object of
// those fields.
type Field struct {
	name        string
	kind        Kind
	description string
	required    bool
	items       []Field
}

// NewField returns an optional field of the given kind.
func NewField(name string, kind Kind, description string) Field {
	return Field{name: name, kind: kind, description: description}
}

// String returns an optional string field.
func String(name, description string) Field {
	return NewField(name, KindString, description)
}

// Number returns an optional number field.
func Number(name, description string) Field {
	return NewField(name, KindNumber, description)
}

// Boolean returns an optional boolean field.
func Boolean(name, description string) Field {
	return NewField(name, KindBoolean, description)
}

// Array returns an optional array field whose elements are described by items.
func Array(name, description string, items ...Field) Field {
	f := NewField(name, KindArray, description)
	f.items = slices.Clone(items)
	return f
}

// AsRequired returns a copy of f marked as required.
func (f Field) AsRequired() Field {
	f.required = true
	f.items = slices.Clone(f.items)
	return f
}

func (f Field) Name() string        { return f.name }
func (f Field) Description() string { return f.description }
func (f Field) Required() bool      { return f.required }
func (f Field) Kind() Kind          { return f.kind }

// Items returns a copy of the element descriptors of an array field.
func (f Field) Items() []Field { return slices.Clone(f.items) }

func (f Field) schema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: f.kind.String(), Description: f.description}
}

func (f Field) validationSchema() map[string]any {
	s := map[string]any{"type": f.kind.String()}
	if f.kind == KindArray && len(f.items) > 0 {
		s["items"] = objectValidationSchema(f.itemParams())
	}
	return s
}

func (f Field) itemParams() []Param {
	out := make([]Param, len(f.items))
	for i, it := range f.items {
		out[i] = it
	}
	return out
}

func (f Field) check() error {
	if f.name == "" {
		return fmt.Errorf("%w: field name must not be empty", ErrInvalidDescriptor)
	}
	if !f.kind.valid() {
		return fmt.Errorf("%w: field %q has unsupported kind %s", ErrInvalidDescriptor, f.name, f.kind)
	}
	if len(f.items) > 0 && f.kind != KindArray {
		return fmt.Errorf("%w: field %q has items but is %s", ErrInvalidDescriptor, f.name, f.kind)
	}
	return checkParams(f.name, f.itemParams())
}

// checkParams validates every param and rejects duplicate names within one list.
func checkParams(owner string, params []Param) error {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if p == nil {
			return fmt.Errorf("%w: nil parameter in %q", ErrInvalidDescriptor, owner)
		}
		if err := p.check(); err != nil {
			return err
		}
		if _, dup := seen[p.Name()]; dup {
			return fmt.Errorf("%w: duplicate name %q in %q", ErrInvalidDescriptor, p.Name(), owner)
		}
		seen[p.Name()] = struct{}{}
	}
	return nil
}

// Describe returns the manifest schema node of p: {type, description} for a Field,
// {type: "object", name, description, properties} for an Object.
func Describe(p Param) *jsonschema.Schema {
	return p.schema()
}
