package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/zombograph/pkg/pgsql"
)

func newProductsBuilder() *Builder {
	return NewBuilder(pgsql.Identifier("zombodb_test", "products"), "__local_0__")
}

func TestBuilder_Compile(t *testing.T) {
	b := newProductsBuilder()
	b.SelectColumn("id", "id")
	b.SelectColumn("name", "name")
	b.Where(pgsql.Sprintf("%s.%s = %s", b.TableAlias(), pgsql.Identifier("active"), pgsql.Value(true)))
	b.Where(pgsql.Sprintf("%s ==> %s", b.TableAlias(), pgsql.Value("australia")))
	b.OrderBy(pgsql.Sprintf("zdb.score(%s.ctid)", b.TableAlias()), false)
	b.OrderBy(pgsql.Sprintf("%s.%s", b.TableAlias(), pgsql.Identifier("name")), true)
	b.Limit(10)
	b.Offset(5)

	text, args := b.Compile()
	assert.Equal(t,
		`SELECT "__local_0__"."id" AS "id", "__local_0__"."name" AS "name" `+
			`FROM "zombodb_test"."products" AS "__local_0__" `+
			`WHERE ("__local_0__"."active" = $1) AND ("__local_0__" ==> $2) `+
			`ORDER BY zdb.score("__local_0__".ctid) DESC, "__local_0__"."name" ASC `+
			`LIMIT $3 OFFSET $4`,
		text)
	assert.Equal(t, []interface{}{true, "australia", 10, 5}, args)
}

func TestBuilder_CompileCount(t *testing.T) {
	b := newProductsBuilder()
	b.SelectColumn("id", "id")
	b.Where(pgsql.Sprintf("%s ==> %s", b.TableAlias(), pgsql.Value("box")))
	b.OrderBy(pgsql.Raw("1"), true)
	b.Limit(1)

	text, args := b.CompileCount()
	assert.Equal(t,
		`SELECT COUNT(*) FROM "zombodb_test"."products" AS "__local_0__" WHERE ("__local_0__" ==> $1)`,
		text)
	assert.Equal(t, []interface{}{"box"}, args)
}

func TestBuilder_Asterisk(t *testing.T) {
	t.Run("asterisk when allowed", func(t *testing.T) {
		b := newProductsBuilder()
		b.UseAsterisk(true)
		text, _ := b.Compile()
		assert.Equal(t, `SELECT "__local_0__".* FROM "zombodb_test"."products" AS "__local_0__"`, text)
	})

	t.Run("contribution opts out", func(t *testing.T) {
		b := newProductsBuilder()
		b.UseAsterisk(true)
		require.NoError(t, b.Apply(&Contribution{
			DontUseAsterisk: true,
			Apply: func(t Target) error {
				t.Select(pgsql.Sprintf("zdb.score(%s.ctid)", t.TableAlias()), "_score")
				return nil
			},
		}))
		text, _ := b.Compile()
		assert.Equal(t,
			`SELECT zdb.score("__local_0__".ctid) AS "_score" FROM "zombodb_test"."products" AS "__local_0__"`,
			text)
	})

	t.Run("no selections", func(t *testing.T) {
		b := newProductsBuilder()
		text, _ := b.Compile()
		assert.Equal(t, `SELECT 1 FROM "zombodb_test"."products" AS "__local_0__"`, text)
	})
}

func TestBuilder_SelectReplacesAlias(t *testing.T) {
	b := newProductsBuilder()
	b.Select(pgsql.Raw("1"), "x")
	b.Select(pgsql.Raw("2"), "x")
	text, _ := b.Compile()
	assert.Equal(t, `SELECT 2 AS "x" FROM "zombodb_test"."products" AS "__local_0__"`, text)
}

func TestBuilder_LongAliases(t *testing.T) {
	long := strings.Repeat("a", pgsql.MaxIdentifierLength+1)
	exact := strings.Repeat("b", pgsql.MaxIdentifierLength)

	b := newProductsBuilder()
	b.SelectColumn("id", "id")
	b.SelectColumn("name", long)
	b.SelectColumn("price", exact)

	text, _ := b.Compile()
	assert.Equal(t,
		`SELECT "__local_0__"."id" AS "id", "__local_0__"."name" AS "__col_1__", `+
			`"__local_0__"."price" AS "`+exact+`" FROM "zombodb_test"."products" AS "__local_0__"`,
		text)

	assert.Equal(t, "id", b.ColumnKey("id"))
	assert.Equal(t, long, b.ColumnKey("__col_1__"))
	assert.Equal(t, exact, b.ColumnKey(exact))
	assert.Equal(t, "discontinued", b.ColumnKey("discontinued"))
}

func TestBuilder_ApplyError(t *testing.T) {
	b := newProductsBuilder()
	wantErr := errors.New("boom")
	err := b.Apply(&Contribution{Apply: func(Target) error { return wantErr }})
	assert.ErrorIs(t, err, wantErr)
	assert.NoError(t, b.Apply(nil))
	assert.NoError(t, b.Apply(&Contribution{}))
}

func TestApplyOrder(t *testing.T) {
	score := func(t AliasProvider) pgsql.Fragment {
		return pgsql.Sprintf("zdb.score(%s.ctid)", t.TableAlias())
	}
	b := newProductsBuilder()
	ApplyOrder(b, []OrderValue{
		{Alias: "_score_desc", Specs: []SortSpec{{Expr: score, Ascending: false}}},
		{Alias: "name_asc", Specs: []SortSpec{{Expr: ColumnExpression("name"), Ascending: true}}},
	})
	require.True(t, b.HasOrder())

	text, _ := b.Compile()
	assert.Contains(t, text, `ORDER BY zdb.score("__local_0__".ctid) DESC, "__local_0__"."name" ASC`)
}

func TestMatch_Predicate(t *testing.T) {
	b := newProductsBuilder()
	b.Where(Match{
		Columns: []string{"product_id", "deleted_at"},
		Values:  []interface{}{int64(2), nil},
	}.Predicate(b))

	text, args := b.Compile()
	assert.Equal(t,
		`SELECT 1 FROM "zombodb_test"."products" AS "__local_0__" `+
			`WHERE ("__local_0__"."product_id" = $1 AND "__local_0__"."deleted_at" IS NULL)`,
		text)
	assert.Equal(t, []interface{}{int64(2)}, args)
}
