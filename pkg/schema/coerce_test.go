package schema

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceArguments(t *testing.T) {
	s, err := NewSchema(testRegistry(t))
	require.NoError(t, err)
	field, ok := s.Query().Fields.Get("allProducts")
	require.True(t, ok)

	tests := []struct {
		name    string
		raw     map[string]interface{}
		want    map[string]interface{}
		wantErr string
	}{
		{
			name: "absent arguments stay absent",
			raw:  map[string]interface{}{},
			want: map[string]interface{}{},
		},
		{
			name: "enum names become payloads and single values become lists",
			raw:  map[string]interface{}{"orderBy": "NAME_ASC", "first": 10},
			want: map[string]interface{}{"orderBy": []interface{}{"name_asc"}, "first": 10},
		},
		{
			name: "search keeps absent minScore absent",
			raw:  map[string]interface{}{"search": map[string]interface{}{"query": "sports box"}},
			want: map[string]interface{}{"search": map[string]interface{}{"query": "sports box"}},
		},
		{
			name: "integer minScore widens to float",
			raw:  map[string]interface{}{"search": map[string]interface{}{"query": "box", "minScore": 0}},
			want: map[string]interface{}{"search": map[string]interface{}{"query": "box", "minScore": float64(0)}},
		},
		{
			name:    "missing query",
			raw:     map[string]interface{}{"search": map[string]interface{}{"minScore": 1.5}},
			wantErr: "allProducts.search.query: field of required type String! was not provided",
		},
		{
			name:    "null query",
			raw:     map[string]interface{}{"search": map[string]interface{}{"query": nil}},
			wantErr: "expected non-null String",
		},
		{
			name:    "unknown enum value",
			raw:     map[string]interface{}{"orderBy": []interface{}{"SIZE_ASC"}},
			wantErr: `value "SIZE_ASC" does not exist in ProductsOrderBy enum`,
		},
		{
			name:    "unknown argument",
			raw:     map[string]interface{}{"filter": 1},
			wantErr: `unknown argument "filter"`,
		},
		{
			name:    "unknown input field",
			raw:     map[string]interface{}{"search": map[string]interface{}{"query": "x", "maxScore": 1}},
			wantErr: `field "maxScore" is not defined by type SearchQuery`,
		},
		{
			name:    "fractional int",
			raw:     map[string]interface{}{"first": 1.5},
			wantErr: "Int cannot represent 1.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.CoerceArguments(field, tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidationError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewValidationError("a.b", "bad %s", "value"))
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "wrapped: validation failed at a.b: bad value", err.Error())
	assert.False(t, IsValidationError(fmt.Errorf("other")))
}

func TestSerialize(t *testing.T) {
	ts := time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		scalar string
		in     interface{}
		want   interface{}
	}{
		{ScalarFloat, []byte("0.75"), 0.75},
		{ScalarFloat, float64(2), 2.0},
		{ScalarFloat, float32(0.5), 0.5},
		{ScalarInt, int64(7), 7},
		{ScalarBigInt, int64(9007199254740993), "9007199254740993"},
		{ScalarBigFloat, []byte("12.50"), "12.50"},
		{ScalarString, []byte("box"), "box"},
		{ScalarBoolean, true, true},
		{ScalarDate, ts, "2024-03-09"},
		{ScalarDatetime, ts, "2024-03-09T12:30:00Z"},
		{ScalarJSON, []byte(`{"a":1}`), map[string]interface{}{"a": float64(1)}},
		{ScalarFloat, nil, nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.scalar, tt.in), func(t *testing.T) {
			got, err := Serialize(tt.scalar, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Serialize(ScalarFloat, []byte("abc"))
	assert.Error(t, err)
}
