package zombodb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/zombograph/pkg/pgsql"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

func TestParseSearchInput(t *testing.T) {
	zero := 0.0
	half := 0.5

	tests := []struct {
		name    string
		in      interface{}
		want    SearchInput
		wantErr string
	}{
		{
			name: "query only",
			in:   map[string]interface{}{"query": "sports box"},
			want: SearchInput{Query: "sports box"},
		},
		{
			name: "null min score is absent",
			in:   map[string]interface{}{"query": "box", "minScore": nil},
			want: SearchInput{Query: "box"},
		},
		{
			name: "zero min score is kept",
			in:   map[string]interface{}{"query": "box", "minScore": 0.0},
			want: SearchInput{Query: "box", MinScore: &zero},
		},
		{
			name: "positive min score",
			in:   map[string]interface{}{"query": "box", "minScore": 0.5},
			want: SearchInput{Query: "box", MinScore: &half},
		},
		{
			name:    "negative min score",
			in:      map[string]interface{}{"query": "box", "minScore": -1.0},
			wantErr: "validation failed at search.minScore: must be a non-negative number, got -1",
		},
		{
			name:    "NaN min score",
			in:      map[string]interface{}{"query": "box", "minScore": math.NaN()},
			wantErr: "must be a non-negative number",
		},
		{
			name:    "missing query",
			in:      map[string]interface{}{"minScore": 1.0},
			wantErr: "validation failed at search.query: a query string is required",
		},
		{
			name:    "not an object",
			in:      "sports box",
			wantErr: "expected SearchQuery object, got string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSearchInput(tt.in, "search")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, schema.IsValidationError(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchInput_Predicate(t *testing.T) {
	alias := pgsql.Identifier("__local_0__")

	text, args := pgsql.Compile(SearchInput{Query: "australia"}.Predicate(alias))
	assert.Equal(t, `"__local_0__" ==> $1`, text)
	assert.Equal(t, []interface{}{"australia"}, args)

	zero := 0.0
	text, args = pgsql.Compile(SearchInput{Query: "sports box", MinScore: &zero}.Predicate(alias))
	assert.Equal(t, `"__local_0__" ==> dsl.min_score($1, $2)`, text)
	assert.Equal(t, []interface{}{0.0, "sports box"}, args)
}

func TestScoreExpression(t *testing.T) {
	text, args := pgsql.Compile(ScoreExpression(pgsql.Identifier("__local_1__")))
	assert.Equal(t, `zdb.score("__local_1__".ctid)`, text)
	assert.Empty(t, args)
}
