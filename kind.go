package aifunc

import "fmt"

// Kind is the primitive type of a Field. The set is closed: every switch over Kind in
// this package handles all four values.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindBoolean
	KindArray
)

// String returns the JSON Schema type name of k.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) valid() bool {
	return k >= KindString && k <= KindArray
}
