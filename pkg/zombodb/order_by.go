package zombodb

import (
	"fmt"
	"strings"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/query"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

// addScoreOrder adds ascending and descending score values to the sort
// enum of searchable tables
func (p *Plugin) addScoreOrder(values schema.EnumValues, ctx *build.EnumValuesContext) (schema.EnumValues, error) {
	if !ctx.Scope.IsRowSortEnum || ctx.Scope.Class == nil {
		return values, nil
	}
	tables, err := build.MustValue(ctx.State, TablesKey)
	if err != nil {
		return nil, err
	}
	if !tables.Contains(ctx.Scope.Class) {
		return values, nil
	}
	names, err := build.MustValue(ctx.State, NamesKey)
	if err != nil {
		return nil, err
	}

	return build.Extend(&ctx.HookContext, values,
		fmt.Sprintf("Adding zombodb score columns for sorting on table '%s'", ctx.Scope.Class.Name),
		scoreOrderValue(names.ScoreAsc, true),
		scoreOrderValue(names.ScoreDesc, false),
	), nil
}

func scoreOrderValue(name string, ascending bool) *schema.EnumValue {
	return &schema.EnumValue{
		Name: name,
		Value: query.OrderValue{
			Alias: strings.ToLower(name),
			Specs: []query.SortSpec{{Expr: scoreSortExpression, Ascending: ascending}},
		},
	}
}
