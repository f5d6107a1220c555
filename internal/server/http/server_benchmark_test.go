package server

import (
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/nestjam/goto/internal/domain"
	"github.com/nestjam/goto/internal/domain/service"
	"github.com/nestjam/goto/internal/persistance/inmemory"
)

func BenchmarkURLShortener(b *testing.B) {
	b.Run("with in memory store", func(b *testing.B) {
		URLShortenerTest{
			CreateDependencies: func() (domain.URLStore, Cleanup) {
				return inmemory.New(), func() {}
			},
		}.Benchmark(b)
	})
}

func (u URLShortenerTest) Benchmark(b *testing.B) {
	b.Run("redirect to original url", func(b *testing.B) {
		const key = "hi"
		store, cleanup := u.CreateDependencies()
		b.Cleanup(cleanup)
		_, err := store.Upsert(b.Context(), domain.UpsertRequest{
			OriginalURL: testURL,
			ID:          domain.Explicit(key),
			Mode:        domain.CreateOnly,
		})
		if err != nil {
			b.Fatal(err)
		}
		sut := New(service.New(store))
		request := newGetRequest(key)

		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			sut.ServeHTTP(httptest.NewRecorder(), request)
		}
	})

	b.Run("register url", func(b *testing.B) {
		store, cleanup := u.CreateDependencies()
		b.Cleanup(cleanup)
		sut := New(service.New(store))

		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			b.StopTimer()
			request := newPostRequest("/k"+strconv.Itoa(i), testURL)
			response := httptest.NewRecorder()
			b.StartTimer()

			sut.ServeHTTP(response, request)
		}
	})
}
