package zombodb

import (
	"github.com/platinummonkey/zombograph/pkg/pgsql"
	"github.com/platinummonkey/zombograph/pkg/query"
)

// ScoreExpression computes the relevance score of the current row of the
// table bound to alias. The score field and both score sort values use it.
func ScoreExpression(alias pgsql.Fragment) pgsql.Fragment {
	return pgsql.Sprintf("zdb.score(%s.ctid)", alias)
}

func scoreSortExpression(t query.AliasProvider) pgsql.Fragment {
	return ScoreExpression(t.TableAlias())
}
