package zombodb

import (
	"fmt"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/query"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

// ScoreAlias is the private selection alias of a score requested under
// alias
func ScoreAlias(alias string) string {
	return "__zdb_score__" + alias
}

// addScoreField adds the score field to row types of searchable tables
func (p *Plugin) addScoreField(fields schema.Fields, ctx *build.ObjectFieldsContext) (schema.Fields, error) {
	if !(ctx.Scope.IsRowType || ctx.Scope.IsCompoundType) || ctx.Scope.Class == nil {
		return fields, nil
	}
	tables, err := build.MustValue(ctx.State, TablesKey)
	if err != nil {
		return nil, err
	}
	if !tables.Contains(ctx.Scope.Class) {
		return fields, nil
	}
	names, err := build.MustValue(ctx.State, NamesKey)
	if err != nil {
		return nil, err
	}

	table := ctx.Scope.Class.Name
	return build.Extend(&ctx.HookContext, fields,
		fmt.Sprintf("Adding zombodb score field to '%s'", ctx.Self.Name),
		&schema.Field{
			Name:        names.ScoreField,
			Description: "Full-text search score.",
			Type:        schema.Named(schema.ScalarFloat),
			Scope:       schema.Scope{IsScoreField: true, Class: ctx.Scope.Class},
			DataGenerators: []schema.DataGenerator{
				func(req schema.FieldRequest) (*query.Contribution, error) {
					p.metrics.ScoreSelected(table)
					return &query.Contribution{
						DontUseAsterisk: true,
						Apply: func(t query.Target) error {
							t.Select(ScoreExpression(t.TableAlias()), ScoreAlias(req.Alias))
							return nil
						},
					}, nil
				},
			},
			Resolve: func(row schema.Row, info schema.ResolveInfo) (interface{}, error) {
				return schema.Serialize(schema.ScalarFloat, row[ScoreAlias(info.Alias)])
			},
		},
	), nil
}
