package zombodb

import (
	"math"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/pgsql"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

// Input field names of the filter type
const (
	FieldQuery    = "query"
	FieldMinScore = "minScore"
)

// SearchInput is one submitted search filter
type SearchInput struct {
	Query    string
	MinScore *float64
}

// ParseSearchInput reads a coerced filter value. path locates the value
// in validation errors.
func ParseSearchInput(v interface{}, path string) (SearchInput, error) {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return SearchInput{}, schema.NewValidationError(path, "expected %s object, got %T", FilterTypeName, v)
	}

	q, ok := raw[FieldQuery].(string)
	if !ok {
		return SearchInput{}, schema.NewValidationError(path+"."+FieldQuery, "a query string is required")
	}
	in := SearchInput{Query: q}

	if m, present := raw[FieldMinScore]; present && m != nil {
		score, ok := m.(float64)
		if !ok {
			return SearchInput{}, schema.NewValidationError(path+"."+FieldMinScore, "expected Float, got %T", m)
		}
		if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
			return SearchInput{}, schema.NewValidationError(path+"."+FieldMinScore, "must be a non-negative number, got %v", score)
		}
		in.MinScore = &score
	}
	return in, nil
}

// DSL renders the search request in the native query language: the query
// text alone, or wrapped in a minimum score constraint
func (in SearchInput) DSL() pgsql.Fragment {
	if in.MinScore != nil {
		return pgsql.Sprintf("dsl.min_score(%s, %s)", pgsql.Value(*in.MinScore), pgsql.Value(in.Query))
	}
	return pgsql.Value(in.Query)
}

// Predicate matches the table bound to alias against the search request
func (in SearchInput) Predicate(alias pgsql.Fragment) pgsql.Fragment {
	return pgsql.Sprintf("%s ==> %s", alias, in.DSL())
}

// registerFilterType registers the search filter input once per build,
// and only when at least one table is searchable
func (p *Plugin) registerFilterType(ctx *build.InitContext) error {
	tables, err := build.MustValue(ctx.State, TablesKey)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		return nil
	}
	names, err := build.MustValue(ctx.State, NamesKey)
	if err != nil {
		return err
	}

	return ctx.Register(&schema.InputObject{
		Name:        names.FilterType,
		Description: "A full text search filter to be used against a collection.",
		Fields: schema.InputFields{
			{
				Name:        FieldQuery,
				Description: "The query to search for in the collection.",
				Type:        schema.NonNullOf(schema.Named(schema.ScalarString)),
			},
			{
				Name:        FieldMinScore,
				Description: "The minimum score to return.",
				Type:        schema.Named(schema.ScalarFloat),
			},
		},
		Scope: schema.Scope{IsSearchFilter: true},
	})
}
