package tables

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/zombograph/pkg/build"
	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/introspection/introspectiontest"
	"github.com/platinummonkey/zombograph/pkg/pgsql"
	"github.com/platinummonkey/zombograph/pkg/query"
	"github.com/platinummonkey/zombograph/pkg/schema"
)

func buildSchema(t *testing.T, opts Options, snapshot *introspection.Result) *build.Result {
	t.Helper()
	b := build.NewBuilder(nil)
	require.NoError(t, b.Use(NewPlugin(opts, nil)))
	res, err := b.Build(context.Background(), snapshot)
	require.NoError(t, err)
	return res
}

func lower(t *testing.T, field *schema.Field, args map[string]interface{}) *query.Builder {
	t.Helper()
	qb := query.NewBuilder(pgsql.Identifier("zombodb_test", "products"), "__local_0__")
	for _, gen := range field.ArgDataGenerators {
		c, err := gen(args)
		require.NoError(t, err)
		require.NoError(t, qb.Apply(c))
	}
	return qb
}

func TestPlugin_GeneratesTypes(t *testing.T) {
	res := buildSchema(t, Options{}, introspectiontest.Products(true, true))
	s := res.Schema

	product, ok := s.Object("Product")
	require.True(t, ok)
	assert.True(t, product.Scope.IsRowType)
	assert.Equal(t, "products", product.Scope.Class.Name)
	assert.Equal(t, []string{
		"id", "name", "keywords", "shortSummary", "longDescription", "price",
		"inventoryCount", "discontinued", "availabilityDate", "reviewsByProductId",
	}, product.Fields.Names())

	id, _ := product.Fields.Get("id")
	assert.Equal(t, "BigInt!", id.Type.String())
	keywords, _ := product.Fields.Get("keywords")
	assert.Equal(t, "[String]", keywords.Type.String())
	count, _ := product.Fields.Get("inventoryCount")
	assert.Equal(t, "Int", count.Type.String())

	reviews, _ := product.Fields.Get("reviewsByProductId")
	assert.Equal(t, "ReviewsConnection!", reviews.Type.String())
	assert.True(t, reviews.Scope.IsConnectionField)
	assert.True(t, reviews.Scope.IsBackwardRelationField)
	assert.Equal(t, "reviews", reviews.Scope.Class.Name)

	all, ok := s.Query().Fields.Get("allProducts")
	require.True(t, ok)
	assert.Equal(t, "ProductsConnection!", all.Type.String())
	assert.Equal(t, []string{"first", "offset", "orderBy", "condition"}, all.Args.Names())
	_, ok = s.Query().Fields.Get("allProductsList")
	assert.False(t, ok)

	orderBy, ok := s.Type("ProductsOrderBy")
	require.True(t, ok)
	names := orderBy.(*schema.Enum).Values.Names()
	assert.Equal(t, []string{"NATURAL", "PRIMARY_KEY_ASC", "PRIMARY_KEY_DESC", "ID_ASC", "ID_DESC", "NAME_ASC", "NAME_DESC"}, names[:7])
	assert.NotContains(t, names, "KEYWORDS_ASC")

	cond, ok := s.Type("ProductCondition")
	require.True(t, ok)
	_, ok = cond.(*schema.InputObject).Fields.Get("keywords")
	assert.False(t, ok)

	sdl := schema.PrintSDL(s)
	assert.Contains(t, sdl, "type ProductsConnection {")
	assert.Contains(t, sdl, "  totalCount: Int!\n")
}

func TestPlugin_SimpleCollections(t *testing.T) {
	res := buildSchema(t, Options{SimpleCollections: SimpleCollectionsBoth}, introspectiontest.Products(false, false))
	q := res.Schema.Query()

	list, ok := q.Fields.Get("allProductsList")
	require.True(t, ok)
	assert.True(t, list.Scope.IsSimpleCollectionField)
	assert.Equal(t, "[Product!]", list.Type.String())

	product, _ := res.Schema.Object("Product")
	_, ok = product.Fields.Get("reviewsByProductIdList")
	assert.True(t, ok)

	only := buildSchema(t, Options{SimpleCollections: SimpleCollectionsOnly}, introspectiontest.Products(false, false))
	_, ok = only.Schema.Query().Fields.Get("allProducts")
	assert.False(t, ok)
	_, ok = only.Schema.Type("ProductsConnection")
	assert.False(t, ok)

	b := build.NewBuilder(nil)
	assert.Error(t, b.Use(NewPlugin(Options{SimpleCollections: "sometimes"}, nil)))
}

func TestPlugin_Exposure(t *testing.T) {
	fx := introspectiontest.New()
	fx.Table("app", "widgets", introspectiontest.Column{Name: "secret", Type: "text", Comment: "@omit read"})
	hidden := fx.Table("app", "audit_log")
	hidden.Tags = introspection.Tags{"omit": ""}
	fx.Table("private", "keys")

	res := buildSchema(t, Options{Schemas: []string{"app"}}, fx.Result())

	assert.Equal(t, []string{"allWidgets"}, res.Schema.Query().Fields.Names())
	widget, ok := res.Schema.Object("Widget")
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, widget.Fields.Names())

	classes, ok := build.Value(res.State, ClassesKey)
	require.True(t, ok)
	require.Len(t, classes, 1)
	assert.Equal(t, "widgets", classes[0].Name)
}

func TestLowering_ConditionAndOrder(t *testing.T) {
	res := buildSchema(t, Options{}, introspectiontest.Products(false, false))
	all, _ := res.Schema.Query().Fields.Get("allProducts")

	args, err := res.Schema.CoerceArguments(all, map[string]interface{}{
		"condition": map[string]interface{}{"name": "Box", "discontinued": nil},
		"orderBy":   []interface{}{"NAME_ASC"},
	})
	require.NoError(t, err)

	text, params := lower(t, all, args).Compile()
	assert.Equal(t,
		`SELECT 1 FROM "zombodb_test"."products" AS "__local_0__" `+
			`WHERE ("__local_0__"."name" = $1 AND "__local_0__"."discontinued" IS NULL) `+
			`ORDER BY "__local_0__"."name" ASC, "__local_0__"."id" ASC`,
		text)
	assert.Equal(t, []interface{}{"Box"}, params)
}

func TestLowering_UniqueOrderSkipsTieBreak(t *testing.T) {
	res := buildSchema(t, Options{}, introspectiontest.Products(false, false))
	all, _ := res.Schema.Query().Fields.Get("allProducts")

	args, err := res.Schema.CoerceArguments(all, map[string]interface{}{"orderBy": []interface{}{"PRIMARY_KEY_DESC"}})
	require.NoError(t, err)
	text, _ := lower(t, all, args).Compile()
	assert.Equal(t, `SELECT 1 FROM "zombodb_test"."products" AS "__local_0__" ORDER BY "__local_0__"."id" DESC`, text)

	text, _ = lower(t, all, map[string]interface{}{}).Compile()
	assert.Equal(t, `SELECT 1 FROM "zombodb_test"."products" AS "__local_0__" ORDER BY "__local_0__"."id" ASC`, text)
}

func TestRelationResolver(t *testing.T) {
	res := buildSchema(t, Options{}, introspectiontest.Products(false, false))
	product, _ := res.Schema.Object("Product")
	reviews, _ := product.Fields.Get("reviewsByProductId")

	qb := query.NewBuilder(pgsql.Identifier("zombodb_test", "products"), "__local_0__")
	for _, gen := range reviews.DataGenerators {
		c, err := gen(schema.FieldRequest{Alias: "reviews"})
		require.NoError(t, err)
		require.NoError(t, qb.Apply(c))
	}
	text, _ := qb.Compile()
	assert.Equal(t, `SELECT "__local_0__"."id" AS "__rel7_reviews_id" FROM "zombodb_test"."products" AS "__local_0__"`, text)

	v, err := reviews.Resolve(schema.Row{"__rel7_reviews_id": int64(2)}, schema.ResolveInfo{Alias: "reviews"})
	require.NoError(t, err)
	assert.Equal(t, query.Match{Columns: []string{"product_id"}, Values: []interface{}{int64(2)}}, v)

	v, err = reviews.Resolve(schema.Row{}, schema.ResolveInfo{Alias: "reviews"})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestColumnResolver(t *testing.T) {
	res := buildSchema(t, Options{}, introspectiontest.Products(false, false))
	product, _ := res.Schema.Object("Product")

	keywords, _ := product.Fields.Get("keywords")
	v, err := keywords.Resolve(schema.Row{"kw": []byte(`{baseball,sports,NULL}`)}, schema.ResolveInfo{Alias: "kw"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"baseball", "sports", nil}, v)

	id, _ := product.Fields.Get("id")
	v, err = id.Resolve(schema.Row{"id": int64(4)}, schema.ResolveInfo{Alias: "id"})
	require.NoError(t, err)
	assert.Equal(t, "4", v)
}

func TestScalarFor(t *testing.T) {
	assert.Equal(t, schema.ScalarInt, ScalarFor("int4"))
	assert.Equal(t, schema.ScalarBigInt, ScalarFor("int8"))
	assert.Equal(t, schema.ScalarString, ScalarFor("_varchar"))
	assert.Equal(t, schema.ScalarDate, ScalarFor("date"))
	assert.Equal(t, schema.ScalarString, ScalarFor("fulltext"))
}
