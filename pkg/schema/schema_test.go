package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(&Enum{
		Name:        "ProductsOrderBy",
		Description: "Methods to use when ordering `Product`.",
		Values: EnumValues{
			{Name: "NATURAL", Value: "natural"},
			{Name: "NAME_ASC", Value: "name_asc"},
		},
	}))
	require.NoError(t, r.Register(&InputObject{
		Name: "SearchQuery",
		Fields: InputFields{
			{Name: "query", Type: NonNullOf(Named(ScalarString))},
			{Name: "minScore", Type: Named(ScalarFloat)},
		},
	}))
	require.NoError(t, r.Register(&Object{
		Name: "Product",
		Fields: Fields{
			{Name: "id", Type: NonNullOf(Named(ScalarBigInt))},
			{Name: "name", Type: Named(ScalarString)},
		},
	}))
	require.NoError(t, r.Register(&Object{
		Name: QueryTypeName,
		Fields: Fields{
			{
				Name: "allProducts",
				Type: ListOf(NonNullOf(Named("Product"))),
				Args: Arguments{
					{Name: "first", Type: Named(ScalarInt)},
					{Name: "orderBy", Type: ListOf(NonNullOf(Named("ProductsOrderBy")))},
					{Name: "search", Type: Named("SearchQuery")},
				},
			},
		},
	}))
	return r
}

func TestRegistry(t *testing.T) {
	r := testRegistry(t)

	err := r.Register(&Scalar{Name: ScalarInt})
	assert.True(t, errors.Is(err, ErrTypeExists))

	err = r.Replace(&Scalar{Name: "Missing"})
	assert.True(t, errors.Is(err, ErrTypeNotFound))

	require.NoError(t, r.Replace(&Object{Name: "Product", Description: "replaced"}))
	got, ok := r.Lookup("Product")
	require.True(t, ok)
	assert.Equal(t, "replaced", got.TypeDescription())
}

func TestNewSchema(t *testing.T) {
	t.Run("requires a query type", func(t *testing.T) {
		_, err := NewSchema(NewRegistry())
		assert.True(t, errors.Is(err, ErrTypeNotFound))
	})

	t.Run("rejects dangling references", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(&Object{
			Name:   QueryTypeName,
			Fields: Fields{{Name: "thing", Type: Named("Thing")}},
		}))
		_, err := NewSchema(r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Query.thing references unknown type Thing")
	})

	t.Run("freezes types", func(t *testing.T) {
		s, err := NewSchema(testRegistry(t))
		require.NoError(t, err)
		assert.Equal(t, QueryTypeName, s.Query().Name)

		obj, ok := s.Object("Product")
		require.True(t, ok)
		assert.Len(t, obj.Fields, 2)

		_, ok = s.Object("SearchQuery")
		assert.False(t, ok)
	})
}

func TestPrintSDL(t *testing.T) {
	s, err := NewSchema(testRegistry(t))
	require.NoError(t, err)

	sdl := PrintSDL(s)

	assert.NotContains(t, sdl, "scalar Int")
	assert.Contains(t, sdl, `"""A signed eight-byte integer, serialized as a string."""`+"\nscalar BigInt")
	assert.Contains(t, sdl, "input SearchQuery {\n  query: String!\n  minScore: Float\n}")
	assert.Contains(t, sdl, "type Query {\n  allProducts(\n    first: Int\n    orderBy: [ProductsOrderBy!]\n    search: SearchQuery\n  ): [Product!]\n}")
	assert.Contains(t, sdl, "enum ProductsOrderBy {\n  NATURAL\n  NAME_ASC\n}")

	again, err := NewSchema(testRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, sdl, PrintSDL(again))
}

func TestPrintType_MultilineDescription(t *testing.T) {
	out := PrintType(&Scalar{Name: "Cursor", Description: "A cursor.\nOpaque."})
	assert.Equal(t, "\"\"\"\nA cursor.\nOpaque.\n\"\"\"\nscalar Cursor", out)
}
