package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	t.Run("generate request id", func(t *testing.T) {
		var got string
		spy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = GetRequestID(r.Context())
		})
		request := httptest.NewRequest(http.MethodGet, "/abcde", http.NoBody)
		response := httptest.NewRecorder()

		RequestID(spy).ServeHTTP(response, request)

		_, err := uuid.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, got, response.Header().Get(requestIDHeader))
	})

	t.Run("keep request id from client", func(t *testing.T) {
		const id = "client-id"
		var got string
		spy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = GetRequestID(r.Context())
		})
		request := httptest.NewRequest(http.MethodGet, "/abcde", http.NoBody)
		request.Header.Set(requestIDHeader, id)
		response := httptest.NewRecorder()

		RequestID(spy).ServeHTTP(response, request)

		assert.Equal(t, id, got)
		assert.Equal(t, id, response.Header().Get(requestIDHeader))
	})

	t.Run("no request id in context", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/abcde", http.NoBody)

		_, ok := GetRequestID(request.Context())

		assert.False(t, ok)
	})
}
