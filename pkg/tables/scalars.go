package tables

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

// ScalarFor maps a PostgreSQL type name to the scalar exposing it. Unknown
// types are exposed as strings.
func ScalarFor(typeName string) string {
	switch strings.TrimPrefix(typeName, "_") {
	case "int2", "int4", "oid":
		return schema.ScalarInt
	case "int8":
		return schema.ScalarBigInt
	case "float4", "float8":
		return schema.ScalarFloat
	case "numeric", "money":
		return schema.ScalarBigFloat
	case "bool":
		return schema.ScalarBoolean
	case "date":
		return schema.ScalarDate
	case "timestamp", "timestamptz":
		return schema.ScalarDatetime
	case "json", "jsonb":
		return schema.ScalarJSON
	default:
		return schema.ScalarString
	}
}

func outputType(a *introspection.Attribute) *schema.TypeRef {
	t := schema.Named(ScalarFor(a.TypeName))
	if a.IsArray {
		t = schema.ListOf(t)
	}
	if a.IsNotNull {
		t = schema.NonNullOf(t)
	}
	return t
}

func columnResolver(a *introspection.Attribute) schema.Resolver {
	scalar := ScalarFor(a.TypeName)
	if !a.IsArray {
		return func(row schema.Row, info schema.ResolveInfo) (interface{}, error) {
			return schema.Serialize(scalar, row[info.Alias])
		}
	}

	return func(row schema.Row, info schema.ResolveInfo) (interface{}, error) {
		raw := row[info.Alias]
		if raw == nil {
			return nil, nil
		}
		var items []sql.NullString
		if err := pq.Array(&items).Scan(raw); err != nil {
			return nil, fmt.Errorf("failed to parse array column %s: %w", a.Name, err)
		}
		out := make([]interface{}, len(items))
		for i, item := range items {
			if !item.Valid {
				continue
			}
			v, err := schema.Serialize(scalar, item.String)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}
