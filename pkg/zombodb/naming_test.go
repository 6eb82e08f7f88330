package zombodb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/zombograph/pkg/build"
)

func TestResolveNames(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Names
	}{
		{
			name: "defaults",
			opts: Options{},
			want: Names{
				SearchInputField: "search",
				ScoreField:       "_score",
				FilterType:       "SearchQuery",
				ScoreAsc:         "_SCORE_ASC",
				ScoreDesc:        "_SCORE_DESC",
			},
		},
		{
			name: "configured names",
			opts: Options{SearchInputField: "fullText", ScoreField: "relevance"},
			want: Names{
				SearchInputField: "fullText",
				ScoreField:       "relevance",
				FilterType:       "SearchQuery",
				ScoreAsc:         "RELEVANCE_ASC",
				ScoreDesc:        "RELEVANCE_DESC",
			},
		},
		{
			name: "camel case score field",
			opts: Options{ScoreField: "searchRank"},
			want: Names{
				SearchInputField: "search",
				ScoreField:       "searchRank",
				FilterType:       "SearchQuery",
				ScoreAsc:         "SEARCH_RANK_ASC",
				ScoreDesc:        "SEARCH_RANK_DESC",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inf, _ := build.NewInflector().Extend(InflectionRules(tt.opts))
			names, err := ResolveNames(inf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestResolveNames_SortNamesFollowScoreOverride(t *testing.T) {
	inf, _ := build.NewInflector().Extend(InflectionRules(Options{}))
	inf, collisions := inf.Extend(map[string]build.NameFunc{
		InflectScoreField: func(*build.Inflector, ...string) string { return "_rank" },
	})
	assert.Equal(t, []string{InflectScoreField}, collisions)

	names, err := ResolveNames(inf)
	require.NoError(t, err)
	assert.Equal(t, "_rank", names.ScoreField)
	assert.Equal(t, "_RANK_ASC", names.ScoreAsc)
	assert.Equal(t, "_RANK_DESC", names.ScoreDesc)
}

func TestResolveNames_MissingRule(t *testing.T) {
	_, err := ResolveNames(build.NewInflector())
	require.Error(t, err)
	assert.True(t, errors.Is(err, build.ErrUnknownInflection))
}
