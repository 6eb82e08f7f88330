package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ValidationError reports a request value that does not fit the schema.
// It is raised before any SQL runs. Err optionally carries a sentinel the
// caller can match with errors.Is.
type ValidationError struct {
	Path    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed at %s: %s", e.Path, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error for path
func NewValidationError(path, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CoerceArguments validates raw argument values against a field's argument
// definitions. Absent arguments stay absent; enum values are replaced by
// their payloads.
func (s *Schema) CoerceArguments(field *Field, raw map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(raw))

	for name := range raw {
		if _, ok := field.Args.Get(name); !ok {
			return nil, NewValidationError(field.Name, "unknown argument %q", name)
		}
	}

	for _, arg := range field.Args {
		path := field.Name + "." + arg.Name
		v, present := raw[arg.Name]
		if !present {
			if arg.Type.NonNull {
				return nil, NewValidationError(path, "required argument is missing")
			}
			continue
		}
		coerced, err := s.CoerceValue(arg.Type, v, path)
		if err != nil {
			return nil, err
		}
		out[arg.Name] = coerced
	}
	return out, nil
}

// CoerceValue validates one input value against a type reference
func (s *Schema) CoerceValue(ref *TypeRef, v interface{}, path string) (interface{}, error) {
	if ref.NonNull {
		if v == nil {
			return nil, NewValidationError(path, "expected non-null %s", ref.OfType.String())
		}
		return s.CoerceValue(ref.OfType, v, path)
	}
	if v == nil {
		return nil, nil
	}

	if ref.List {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			item, err := s.CoerceValue(ref.OfType, v, path+"[0]")
			if err != nil {
				return nil, err
			}
			return []interface{}{item}, nil
		}
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := s.CoerceValue(ref.OfType, rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	}

	t, ok := s.types[ref.Name]
	if !ok {
		return nil, NewValidationError(path, "unknown type %s", ref.Name)
	}

	switch def := t.(type) {
	case *Scalar:
		return coerceScalar(def.Name, v, path)
	case *Enum:
		name, ok := v.(string)
		if !ok {
			return nil, NewValidationError(path, "expected %s enum value, got %T", def.Name, v)
		}
		ev, ok := def.Values.Get(name)
		if !ok {
			return nil, NewValidationError(path, "value %q does not exist in %s enum", name, def.Name)
		}
		if ev.Value == nil {
			return ev.Name, nil
		}
		return ev.Value, nil
	case *InputObject:
		return s.coerceInputObject(def, v, path)
	default:
		return nil, NewValidationError(path, "%s is not an input type", ref.Name)
	}
}

func (s *Schema) coerceInputObject(def *InputObject, v interface{}, path string) (map[string]interface{}, error) {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, NewValidationError(path, "expected %s object, got %T", def.Name, v)
	}

	for name := range raw {
		if _, ok := def.Fields.Get(name); !ok {
			return nil, NewValidationError(path, "field %q is not defined by type %s", name, def.Name)
		}
	}

	out := make(map[string]interface{}, len(raw))
	for _, f := range def.Fields {
		fv, present := raw[f.Name]
		if !present {
			if f.Type.NonNull {
				return nil, NewValidationError(path+"."+f.Name, "field of required type %s was not provided", f.Type.String())
			}
			continue
		}
		coerced, err := s.CoerceValue(f.Type, fv, path+"."+f.Name)
		if err != nil {
			return nil, err
		}
		out[f.Name] = coerced
	}
	return out, nil
}

func coerceScalar(name string, v interface{}, path string) (interface{}, error) {
	switch name {
	case ScalarInt:
		n, ok := toInt64(v)
		if !ok || n > math.MaxInt32 || n < math.MinInt32 {
			return nil, NewValidationError(path, "Int cannot represent %v", v)
		}
		return int(n), nil
	case ScalarFloat:
		f, ok := toFloat64(v)
		if !ok {
			return nil, NewValidationError(path, "Float cannot represent %v", v)
		}
		return f, nil
	case ScalarBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, NewValidationError(path, "Boolean cannot represent %v", v)
		}
		return b, nil
	case ScalarBigInt:
		switch x := v.(type) {
		case string:
			if _, err := strconv.ParseInt(x, 10, 64); err != nil {
				return nil, NewValidationError(path, "BigInt cannot represent %q", x)
			}
			return x, nil
		default:
			n, ok := toInt64(v)
			if !ok {
				return nil, NewValidationError(path, "BigInt cannot represent %v", v)
			}
			return strconv.FormatInt(n, 10), nil
		}
	case ScalarBigFloat:
		switch x := v.(type) {
		case string:
			if _, err := strconv.ParseFloat(x, 64); err != nil {
				return nil, NewValidationError(path, "BigFloat cannot represent %q", x)
			}
			return x, nil
		default:
			f, ok := toFloat64(v)
			if !ok {
				return nil, NewValidationError(path, "BigFloat cannot represent %v", v)
			}
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
	case ScalarString, ScalarDate, ScalarDatetime:
		str, ok := v.(string)
		if !ok {
			return nil, NewValidationError(path, "%s cannot represent %v", name, v)
		}
		return str, nil
	default:
		return v, nil
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case float32:
		if float64(x) != math.Trunc(float64(x)) {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}

func toFloat64(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	default:
		n, ok := toInt64(v)
		if !ok {
			return 0, false
		}
		return float64(n), true
	}
}
