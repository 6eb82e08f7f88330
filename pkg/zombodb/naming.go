package zombodb

import (
	"fmt"

	"github.com/platinummonkey/zombograph/pkg/build"
)

// Default public names
const (
	DefaultSearchInputField = "search"
	DefaultScoreField       = "_score"
	FilterTypeName          = "SearchQuery"
)

// Inflection rule names registered during the inflection phase. Later
// plugins may override them to rename the search surface.
const (
	InflectSearchInputField = "zombodbSearchInputField"
	InflectScoreField       = "zombodbScoreField"
	InflectFilterType       = "zombodbFilterType"
	InflectScoreAscEnum     = "zombodbOrderByScoreAscEnum"
	InflectScoreDescEnum    = "zombodbOrderByScoreDescEnum"
)

// Names are the resolved public names of the search surface
type Names struct {
	SearchInputField string
	ScoreField       string
	FilterType       string
	ScoreAsc         string
	ScoreDesc        string
}

// InflectionRules returns the naming rules for the given options
func InflectionRules(opts Options) map[string]build.NameFunc {
	searchField := opts.SearchInputField
	if searchField == "" {
		searchField = DefaultSearchInputField
	}
	scoreField := opts.ScoreField
	if scoreField == "" {
		scoreField = DefaultScoreField
	}

	return map[string]build.NameFunc{
		InflectSearchInputField: func(*build.Inflector, ...string) string {
			return searchField
		},
		InflectScoreField: func(*build.Inflector, ...string) string {
			return scoreField
		},
		InflectFilterType: func(*build.Inflector, ...string) string {
			return FilterTypeName
		},
		InflectScoreAscEnum: func(inf *build.Inflector, _ ...string) string {
			name, _ := inf.Call(InflectScoreField)
			return inf.ConstantCase(name + "_asc")
		},
		InflectScoreDescEnum: func(inf *build.Inflector, _ ...string) string {
			name, _ := inf.Call(InflectScoreField)
			return inf.ConstantCase(name + "_desc")
		},
	}
}

// ResolveNames evaluates every naming rule. It fails when a rule was never
// registered.
func ResolveNames(inf *build.Inflector) (Names, error) {
	var names Names
	targets := []struct {
		rule string
		dst  *string
	}{
		{InflectSearchInputField, &names.SearchInputField},
		{InflectScoreField, &names.ScoreField},
		{InflectFilterType, &names.FilterType},
		{InflectScoreAscEnum, &names.ScoreAsc},
		{InflectScoreDescEnum, &names.ScoreDesc},
	}
	for _, t := range targets {
		v, err := inf.Call(t.rule)
		if err != nil {
			return Names{}, fmt.Errorf("failed to resolve search names: %w", err)
		}
		*t.dst = v
	}
	return names, nil
}
