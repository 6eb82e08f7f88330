package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_With(t *testing.T) {
	base := Fields{
		{Name: "id", Type: Named(ScalarInt)},
		{Name: "name", Type: Named(ScalarString)},
	}

	t.Run("appends new members", func(t *testing.T) {
		out, collisions := base.With(&Field{Name: "_score", Type: Named(ScalarFloat)})
		assert.Empty(t, collisions)
		assert.Equal(t, []string{"id", "name", "_score"}, out.Names())
		assert.Equal(t, []string{"id", "name"}, base.Names())
	})

	t.Run("replaces in place on collision", func(t *testing.T) {
		replacement := &Field{Name: "name", Type: Named(ScalarBigInt)}
		out, collisions := base.With(replacement, &Field{Name: "extra", Type: Named(ScalarInt)})
		assert.Equal(t, []string{"name"}, collisions)
		assert.Equal(t, []string{"id", "name", "extra"}, out.Names())

		got, ok := out.Get("name")
		require.True(t, ok)
		assert.Same(t, replacement, got)

		orig, _ := base.Get("name")
		assert.Equal(t, ScalarString, orig.Type.Name)
	})

	t.Run("later items win within one call", func(t *testing.T) {
		second := &Field{Name: "x", Type: Named(ScalarFloat)}
		out, collisions := Fields{}.With(&Field{Name: "x", Type: Named(ScalarInt)}, second)
		assert.Equal(t, []string{"x"}, collisions)
		require.Len(t, out, 1)
		assert.Same(t, second, out[0])
	})
}

func TestList_Get(t *testing.T) {
	values := EnumValues{{Name: "NATURAL"}, {Name: "ID_ASC"}}

	v, ok := values.Get("ID_ASC")
	require.True(t, ok)
	assert.Equal(t, "ID_ASC", v.Name)

	_, ok = values.Get("ID_DESC")
	assert.False(t, ok)
	assert.Equal(t, "NATURAL, ID_ASC", values.String())
}

func TestTypeRef_String(t *testing.T) {
	tests := []struct {
		name string
		ref  *TypeRef
		want string
	}{
		{"named", Named("Product"), "Product"},
		{"non null", NonNullOf(Named(ScalarString)), "String!"},
		{"list", ListOf(Named("Product")), "[Product]"},
		{"non null list of non null", NonNullOf(ListOf(NonNullOf(Named("Product")))), "[Product!]!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.String())
			assert.Equal(t, "Product", Named("Product").NamedType())
		})
	}
	assert.Equal(t, ScalarString, NonNullOf(ListOf(Named(ScalarString))).NamedType())
}
