package tables

import (
	"fmt"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/query"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

// conditionGenerator lowers the condition argument into one equality (or
// IS NULL) predicate per supplied field
func conditionGenerator(inf *build.Inflector, c *introspection.Class) schema.ArgDataGenerator {
	type column struct {
		field string
		name  string
	}
	var columns []column
	for _, a := range conditionAttributes(c) {
		columns = append(columns, column{field: inf.Column(a), name: a.Name})
	}

	return func(args map[string]interface{}) (*query.Contribution, error) {
		cond, ok := args[ArgCondition].(map[string]interface{})
		if !ok || len(cond) == 0 {
			return nil, nil
		}

		var match query.Match
		for _, col := range columns {
			v, present := cond[col.field]
			if !present {
				continue
			}
			match.Columns = append(match.Columns, col.name)
			match.Values = append(match.Values, v)
		}
		if len(match.Columns) == 0 {
			return nil, nil
		}

		return &query.Contribution{
			Apply: func(t query.Target) error {
				t.Where(match.Predicate(t))
				return nil
			},
		}, nil
	}
}

// orderGenerator lowers orderBy. Values apply in the order given; unless
// one of them is unique the primary key is appended as a final tie-break
// so paging is stable.
func orderGenerator(c *introspection.Class) schema.ArgDataGenerator {
	pk := primaryKeyColumns(c)

	return func(args map[string]interface{}) (*query.Contribution, error) {
		var values []query.OrderValue
		if raw, ok := args[ArgOrderBy].([]interface{}); ok {
			for _, v := range raw {
				ov, ok := v.(query.OrderValue)
				if !ok {
					return nil, fmt.Errorf("unexpected order value %T", v)
				}
				values = append(values, ov)
			}
		}

		unique := false
		for _, v := range values {
			if v.Unique {
				unique = true
			}
		}

		return &query.Contribution{
			Apply: func(t query.Target) error {
				query.ApplyOrder(t, values)
				if unique {
					return nil
				}
				for _, col := range pk {
					t.OrderBy(query.ColumnExpression(col)(t), true)
				}
				return nil
			},
		}, nil
	}
}

// RelationKeyAlias is the private selection alias carrying a parent key
// column for a backward relation requested under alias. The alias length
// is encoded so that no two (alias, column) pairs share a name.
func RelationKeyAlias(alias, column string) string {
	return fmt.Sprintf("__rel%d_%s_%s", len(alias), alias, column)
}

// relationKeyGenerator selects the referenced key columns on the parent
// query so the child collection can be filtered per parent row
func relationKeyGenerator(fk *introspection.Constraint) schema.DataGenerator {
	return func(req schema.FieldRequest) (*query.Contribution, error) {
		return &query.Contribution{
			Apply: func(t query.Target) error {
				for _, a := range fk.ForeignKeyAttributes {
					t.Select(query.ColumnExpression(a.Name)(t), RelationKeyAlias(req.Alias, a.Name))
				}
				return nil
			},
		}, nil
	}
}

// relationResolver returns the query.Match restricting child rows to the
// parent row, or nil when the parent key is NULL and nothing can match
func relationResolver(fk *introspection.Constraint) schema.Resolver {
	return func(row schema.Row, info schema.ResolveInfo) (interface{}, error) {
		if len(fk.KeyAttributes) != len(fk.ForeignKeyAttributes) {
			return nil, fmt.Errorf("foreign key %s has mismatched columns", fk.Name)
		}
		match := query.Match{}
		for i, a := range fk.ForeignKeyAttributes {
			v := row[RelationKeyAlias(info.Alias, a.Name)]
			if v == nil {
				return nil, nil
			}
			match.Columns = append(match.Columns, fk.KeyAttributes[i].Name)
			match.Values = append(match.Values, v)
		}
		return match, nil
	}
}
