package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Serialize converts a value scanned from the database into the output
// representation of the named scalar. Nil stays nil.
func Serialize(scalar string, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	switch scalar {
	case ScalarInt:
		switch x := v.(type) {
		case []byte:
			return strconv.Atoi(string(x))
		case string:
			return strconv.Atoi(x)
		}
		n, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("cannot serialize %T as Int", v)
		}
		return int(n), nil
	case ScalarFloat:
		return serializeFloat(v)
	case ScalarBoolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case []byte:
			return strconv.ParseBool(string(x))
		case string:
			return strconv.ParseBool(x)
		}
		return nil, fmt.Errorf("cannot serialize %T as Boolean", v)
	case ScalarBigInt, ScalarBigFloat, ScalarString:
		return serializeText(v), nil
	case ScalarDate:
		if t, ok := v.(time.Time); ok {
			return t.Format("2006-01-02"), nil
		}
		return serializeText(v), nil
	case ScalarDatetime:
		if t, ok := v.(time.Time); ok {
			return t.Format(time.RFC3339Nano), nil
		}
		return serializeText(v), nil
	case ScalarJSON:
		raw, ok := v.([]byte)
		if !ok {
			return v, nil
		}
		var out interface{}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("failed to decode JSON value: %w", err)
		}
		return out, nil
	default:
		return serializeText(v), nil
	}
}

func serializeFloat(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case []byte:
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot serialize %q as Float: %w", x, err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot serialize %q as Float: %w", x, err)
		}
		return f, nil
	}
	f, ok := toFloat64(v)
	if !ok {
		return nil, fmt.Errorf("cannot serialize %T as Float", v)
	}
	return f, nil
}

func serializeText(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
