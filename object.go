package aifunc

import (
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object describes a composite parameter made of Fields and nested Objects.
// Children order is significant: it is the property order of the generated schema.
// Objects are built with NewObject and are immutable once built.
type Object struct {
	name        string
	description string
	required    bool
	children    []Param
}

// ObjectBuilder accumulates the children of an Object. It is not safe for concurrent use.
type ObjectBuilder struct {
	obj Object
}

// NewObject starts building an optional object parameter.
func NewObject(name, description string) *ObjectBuilder {
	return &ObjectBuilder{obj: Object{name: name, description: description}}
}

// Field appends a child (a Field or a built *Object) and returns the builder.
func (b *ObjectBuilder) Field(p Param) *ObjectBuilder {
	b.obj.children = append(b.obj.children, p)
	return b
}

// Required marks the object as required.
func (b *ObjectBuilder) Required() *ObjectBuilder {
	b.obj.required = true
	return b
}

// Build checks the accumulated children and returns an immutable Object.
// The builder may keep being used; later appends do not affect the returned Object.
func (b *ObjectBuilder) Build() (*Object, error) {
	o := &Object{
		name:        b.obj.name,
		description: b.obj.description,
		required:    b.obj.required,
		children:    slices.Clone(b.obj.children),
	}
	if err := o.check(); err != nil {
		return nil, err
	}
	return o, nil
}

// MustBuild is like Build but panics on error. Use it for descriptors declared at startup.
func (b *ObjectBuilder) MustBuild() *Object {
	o, err := b.Build()
	if err != nil {
		panic(err)
	}
	return o
}

func (o *Object) Name() string        { return o.name }
func (o *Object) Description() string { return o.description }
func (o *Object) Required() bool      { return o.required }

// Children returns a copy of the ordered children.
func (o *Object) Children() []Param { return slices.Clone(o.children) }

func (o *Object) schema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: o.description,
		Properties:  describeProperties(o.children),
		Extras:      map[string]any{"name": o.name},
	}
}

func (o *Object) validationSchema() map[string]any {
	return objectValidationSchema(o.children)
}

func (o *Object) check() error {
	if o == nil {
		return fmt.Errorf("%w: nil object", ErrInvalidDescriptor)
	}
	if o.name == "" {
		return fmt.Errorf("%w: object name must not be empty", ErrInvalidDescriptor)
	}
	return checkParams(o.name, o.children)
}

// describeProperties folds params, in order, into an ordered property map.
func describeProperties(params []Param) *orderedmap.OrderedMap[string, *jsonschema.Schema] {
	props := jsonschema.NewProperties()
	for _, p := range params {
		props.Set(p.Name(), p.schema())
	}
	return props
}

// objectValidationSchema is the deep-validation schema of an object whose
// properties are params. Unlike the manifest, it carries the object-level required list,
// and optional children also accept null.
func objectValidationSchema(params []Param) map[string]any {
	props := make(map[string]any, len(params))
	required := make([]any, 0, len(params))
	for _, p := range params {
		child := p.validationSchema()
		if p.Required() {
			required = append(required, p.Name())
		} else {
			// An optional child may be null, as an optional parameter may be nil.
			child["type"] = []any{child["type"], "null"}
		}
		props[p.Name()] = child
	}
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var (
	_ Param = Field{}
	_ Param = (*Object)(nil)
)
