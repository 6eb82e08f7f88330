package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteJSON(w, http.StatusOK, map[string]string{"message": "success"})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "success")
}

func TestWriteText(t *testing.T) {
	w := httptest.NewRecorder()

	WriteText(w, http.StatusOK, "type Query {}\n")

	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "type Query {}\n", w.Body.String())
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name  string
		write func(w http.ResponseWriter)
		code  int
		want  ErrorResponse
	}{
		{
			name:  "error",
			write: func(w http.ResponseWriter) { WriteError(w, http.StatusConflict, errors.New("taken")) },
			code:  http.StatusConflict,
			want:  ErrorResponse{Error: "taken"},
		},
		{
			name:  "validation",
			write: func(w http.ResponseWriter) { WriteValidationError(w, "allProducts.search.minScore", "must not be negative") },
			code:  http.StatusBadRequest,
			want:  ErrorResponse{Error: "must not be negative", Path: "allProducts.search.minScore"},
		},
		{
			name:  "bad request",
			write: func(w http.ResponseWriter) { WriteBadRequest(w, "no selections") },
			code:  http.StatusBadRequest,
			want:  ErrorResponse{Error: "no selections"},
		},
		{
			name:  "internal",
			write: func(w http.ResponseWriter) { WriteInternalError(w, errors.New("db down")) },
			code:  http.StatusInternalServerError,
			want:  ErrorResponse{Error: "db down"},
		},
		{
			name:  "unavailable",
			write: func(w http.ResponseWriter) { WriteServiceUnavailable(w, "schema not built") },
			code:  http.StatusServiceUnavailable,
			want:  ErrorResponse{Error: "schema not built"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.code, w.Code)
			var got ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}
