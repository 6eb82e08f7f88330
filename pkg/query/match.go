package query

import (
	"github.com/platinummonkey/zombograph/pkg/pgsql"
)

// Match restricts a query to rows whose columns equal the given values.
// A nil value matches NULL.
type Match struct {
	Columns []string
	Values  []interface{}
}

// Predicate renders the match against the current table alias
func (m Match) Predicate(t AliasProvider) pgsql.Fragment {
	conds := make([]pgsql.Fragment, 0, len(m.Columns))
	for i, col := range m.Columns {
		column := pgsql.Sprintf("%s.%s", t.TableAlias(), pgsql.Identifier(col))
		if i >= len(m.Values) || m.Values[i] == nil {
			conds = append(conds, pgsql.Sprintf("%s IS NULL", column))
			continue
		}
		conds = append(conds, pgsql.Sprintf("%s = %s", column, pgsql.Value(m.Values[i])))
	}
	return pgsql.Join(conds, " AND ")
}
