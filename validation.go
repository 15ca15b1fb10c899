package aifunc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

type missingValue struct{}

func (missingValue) String() string { return "<missing>" }

// Missing marks an argument that was not supplied: a key absent from a keyed call,
// or a trailing position absent from a positional call. Implementations never see it;
// an absent optional argument reaches them as nil.
var Missing any = missingValue{}

// validator checks one argument and returns it, possibly coerced.
// A non-nil error is the human-readable reason of the rejection.
type validator func(v any) (any, error)

var errAbsent = errors.New("is required")

// validatorFor derives the validator of p. When deep is true, objects and arrays with
// item descriptors are also checked against their nested shape.
func validatorFor(p Param, deep bool) (validator, error) {
	var check validator
	switch p := p.(type) {
	case *Object:
		check = acceptAny
		if deep {
			compiled, err := compileValidationSchema(p.Name(), p.validationSchema())
			if err != nil {
				return nil, err
			}
			check = compiled
		}
	case Field:
		check = kindValidator(p.kind)
		if deep && p.kind == KindArray && len(p.items) > 0 {
			compiled, err := compileValidationSchema(p.Name(), p.validationSchema())
			if err != nil {
				return nil, err
			}
			check = chain(check, compiled)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported parameter type %T", ErrInvalidDescriptor, p)
	}
	required := p.Required()
	return func(v any) (any, error) {
		if v == Missing || v == nil {
			if required {
				return nil, errAbsent
			}
			return nil, nil
		}
		return check(v)
	}, nil
}

func kindValidator(k Kind) validator {
	switch k {
	case KindString:
		return validateString
	case KindNumber:
		return validateNumber
	case KindBoolean:
		return validateBoolean
	case KindArray:
		return validateArray
	}
	// Unreachable for checked descriptors.
	return func(any) (any, error) { return nil, fmt.Errorf("unsupported kind %s", k) }
}

func chain(first, second validator) validator {
	return func(v any) (any, error) {
		v, err := first(v)
		if err != nil {
			return nil, err
		}
		return second(v)
	}
}

func acceptAny(v any) (any, error) { return v, nil }

func validateString(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, typeMismatch("string", v)
}

func validateBoolean(v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return nil, typeMismatch("boolean", v)
}

// validateNumber accepts every Go numeric type and json.Number, coerced to float64.
func validateNumber(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", n.String())
		}
		return f, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, typeMismatch("number", v)
}

// validateArray accepts any Go slice or array, coerced to []any. Elements are not checked.
func validateArray(v any) (any, error) {
	if a, ok := v.([]any); ok {
		return a, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, typeMismatch("array", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func typeMismatch(want string, got any) error {
	return fmt.Errorf("expected %s, got %s", want, jsonTypeName(got))
}

// jsonTypeName names the JSON type a host value would serialize to.
func jsonTypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case map[string]any:
		return "object"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// compileValidationSchema compiles a raw JSON Schema map into a validator that checks
// the JSON form of a value.
func compileValidationSchema(name string, raw map[string]any) (validator, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal schema of %q: %w", ErrInvalidDescriptor, name, err)
	}
	doc, err := jsv.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse schema of %q: %w", ErrInvalidDescriptor, name, err)
	}
	// An absolute URL keeps the working directory out of validation messages.
	const url = "urn:aifunc:schema"
	c := jsv.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("%w: add schema of %q: %w", ErrInvalidDescriptor, name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: compile schema of %q: %w", ErrInvalidDescriptor, name, err)
	}
	return func(v any) (any, error) {
		inst, err := toJSONValue(v)
		if err != nil {
			return nil, err
		}
		if err := compiled.Validate(inst); err != nil {
			return nil, err
		}
		return v, nil
	}, nil
}

// toJSONValue converts a host value into the generic form the schema validator expects.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-serializable: %w", err)
	}
	return jsv.UnmarshalJSON(bytes.NewReader(data))
}
