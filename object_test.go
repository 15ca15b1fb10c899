package aifunc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "number", KindNumber.String())
	assert.Equal(t, "boolean", KindBoolean.String())
	assert.Equal(t, "array", KindArray.String())
	assert.Equal(t, "Kind(0)", Kind(0).String())
}

func TestField_Constructors(t *testing.T) {
	f := String("city", "City name")
	assert.Equal(t, "city", f.Name())
	assert.Equal(t, "City name", f.Description())
	assert.Equal(t, KindString, f.Kind())
	assert.False(t, f.Required())

	req := f.AsRequired()
	assert.True(t, req.Required())
	assert.False(t, f.Required(), "AsRequired must not modify the receiver")

	arr := Array("tags", "Tags", String("label", "Label"))
	assert.Equal(t, KindArray, arr.Kind())
	require.Len(t, arr.Items(), 1)
	assert.Equal(t, "label", arr.Items()[0].Name())
}

func TestField_ItemsCopied(t *testing.T) {
	items := []Field{String("a", "")}
	arr := Array("xs", "", items...)
	items[0] = Number("b", "")
	assert.Equal(t, "a", arr.Items()[0].Name())

	got := arr.Items()
	got[0] = Boolean("c", "")
	assert.Equal(t, "a", arr.Items()[0].Name())
}

func TestObjectBuilder_Build(t *testing.T) {
	address := NewObject("address", "Postal address").
		Field(String("street", "Street").AsRequired()).
		Field(String("city", "City")).
		MustBuild()
	user := NewObject("user", "A user").
		Required().
		Field(String("name", "Full name")).
		Field(address).
		MustBuild()

	assert.Equal(t, "user", user.Name())
	assert.Equal(t, "A user", user.Description())
	assert.True(t, user.Required())
	children := user.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "name", children[0].Name())
	assert.Same(t, address, children[1])
}

func TestObjectBuilder_BuildIsolated(t *testing.T) {
	b := NewObject("o", "").Field(String("a", ""))
	first, err := b.Build()
	require.NoError(t, err)
	b.Field(String("b", ""))
	second, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, first.Children(), 1)
	assert.Len(t, second.Children(), 2)
}

func TestObjectBuilder_Build_Invalid(t *testing.T) {
	tests := []struct {
		name string
		b    *ObjectBuilder
	}{
		{"empty object name", NewObject("", "d")},
		{"empty field name", NewObject("o", "d").Field(String("", "d"))},
		{"duplicate names", NewObject("o", "d").Field(String("a", "")).Field(Number("a", ""))},
		{"unknown kind", NewObject("o", "d").Field(NewField("x", Kind(42), ""))},
		{"items on scalar", NewObject("o", "d").Field(Field{name: "x", kind: KindString, items: []Field{String("y", "")}})},
		{"duplicate item names", NewObject("o", "d").Field(Array("xs", "", String("a", ""), String("a", "")))},
		{"nil object child", NewObject("o", "d").Field((*Object)(nil))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDescriptor)
		})
	}
}

func TestObjectBuilder_MustBuild_Panics(t *testing.T) {
	assert.Panics(t, func() {
		NewObject("", "").MustBuild()
	})
}
