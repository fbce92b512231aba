package bridge

import (
	"encoding/json"
	"fmt"
)

// TypeDecoder turns JSON text into a value of a known type.
type TypeDecoder func(raw []byte) (any, error)

// TypeScope maps type names to decoders. The accessor resolves the type name
// of a typed SetValue call against its scopes in order.
type TypeScope map[string]TypeDecoder

// DecoderFor returns a decoder producing values of type T.
func DecoderFor[T any]() TypeDecoder {
	return func(raw []byte) (any, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			var zero T
			return nil, fmt.Errorf("decode %T: %w", zero, err)
		}
		return v, nil
	}
}

// builtinTypes is the default scope, searched before any added scope.
var builtinTypes = TypeScope{
	"String":  DecoderFor[string](),
	"Boolean": DecoderFor[bool](),
	"Int32":   DecoderFor[int32](),
	"Int64":   DecoderFor[int64](),
	"Double":  DecoderFor[float64](),
	"Object":  DecoderFor[any](),
}

// Property is one entry of the accessor's property table. Set is optional;
// properties without it are read-only to the view.
type Property struct {
	Get func() any
	Set func(value any) error
}

// ValueProperty builds a property of type T. Set accepts a T directly or any
// value whose JSON form decodes into T, which covers the generic numbers and
// maps produced when the view sends untyped values.
func ValueProperty[T any](get func() T, set func(T)) Property {
	p := Property{Get: func() any { return get() }}
	if set != nil {
		p.Set = func(value any) error {
			v, err := convert[T](value)
			if err != nil {
				return err
			}
			set(v)
			return nil
		}
	}
	return p
}

func convert[T any](value any) (T, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}
	var v T
	raw, err := json.Marshal(value)
	if err != nil {
		return v, fmt.Errorf("convert %T to %T: %w", value, v, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("convert %T to %T: %w", value, zero, err)
	}
	return v, nil
}
