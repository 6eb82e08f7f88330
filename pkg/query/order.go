package query

import (
	"github.com/platinummonkey/zombograph/pkg/pgsql"
)

// Expression produces a SQL expression relative to the query's table alias
type Expression func(t AliasProvider) pgsql.Fragment

// ColumnExpression returns an Expression selecting column from the current table
func ColumnExpression(column string) Expression {
	return func(t AliasProvider) pgsql.Fragment {
		return pgsql.Sprintf("%s.%s", t.TableAlias(), pgsql.Identifier(column))
	}
}

// SortSpec is one sort key
type SortSpec struct {
	Expr      Expression
	Ascending bool
}

// OrderValue is the payload of a row sort enum value. Alias names the
// ordering for cursors and logs; Unique marks orderings that already
// determine a total order.
type OrderValue struct {
	Alias  string
	Specs  []SortSpec
	Unique bool
}

// ApplyOrder registers every key of the given order values in declaration
// order, so earlier values take precedence and later ones break ties
func ApplyOrder(t OrderRegistrar, values []OrderValue) {
	for _, v := range values {
		for _, spec := range v.Specs {
			t.OrderBy(spec.Expr(t), spec.Ascending)
		}
	}
}
