package zombodb

import (
	"fmt"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/query"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

// addSearchArg adds the search argument to collection fields over
// searchable tables and attaches its lowering
func (p *Plugin) addSearchArg(args schema.Arguments, ctx *build.FieldArgsContext) (schema.Arguments, error) {
	if !ctx.Scope.IsCollectionField() || ctx.Scope.Class == nil {
		return args, nil
	}
	tables, err := build.MustValue(ctx.State, TablesKey)
	if err != nil {
		return nil, err
	}
	if !tables.Contains(ctx.Scope.Class) {
		return args, nil
	}
	names, err := build.MustValue(ctx.State, NamesKey)
	if err != nil {
		return nil, err
	}
	filterType, ok := ctx.TypeByName(names.FilterType)
	if !ok {
		return nil, fmt.Errorf("search filter type %s is not registered", names.FilterType)
	}

	ctx.AddArgDataGenerator(p.searchGenerator(names.SearchInputField, ctx.Scope.Class.Name))

	return build.Extend(&ctx.HookContext, args,
		fmt.Sprintf("Adding zombodb search arg to field '%s' of '%s'", ctx.Field.Name, ctx.Self.Name),
		&schema.Argument{
			Name:        names.SearchInputField,
			Description: "A search string used to filter the collection.",
			Type:        schema.Named(filterType.TypeName()),
			Scope:       schema.Scope{IsSearchFilter: true, Class: ctx.Scope.Class},
		},
	), nil
}

// searchGenerator lowers the search argument into a predicate ANDed with
// every other predicate of the query. An absent argument contributes
// nothing.
//
// TODO: pass first/offset and score ordering into the search request as
// a result window once the executor exposes them to argument lowering.
func (p *Plugin) searchGenerator(inputName, table string) schema.ArgDataGenerator {
	return func(args map[string]interface{}) (*query.Contribution, error) {
		raw, present := args[inputName]
		if !present || raw == nil {
			return nil, nil
		}
		input, err := ParseSearchInput(raw, inputName)
		if err != nil {
			return nil, err
		}

		p.metrics.SearchLowered(table, input.MinScore != nil)

		return &query.Contribution{
			DontUseAsterisk: true,
			Apply: func(t query.Target) error {
				t.Where(input.Predicate(t.TableAlias()))
				return nil
			},
		}, nil
	}
}
