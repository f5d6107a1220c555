package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestjam/goto/internal/shortener"
)

// URLStoreContract описывает поведение, общее для всех реализаций URLStore.
type URLStoreContract struct {
	NewURLStore func() (URLStore, func())
}

func (c URLStoreContract) Test(t *testing.T) {
	ctx := context.Background()

	t.Run("create url", func(t *testing.T) {
		const (
			shortURL    = "hello"
			originalURL = "https://google.com"
		)
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		effect, err := sut.Upsert(ctx, UpsertRequest{
			OriginalURL: originalURL,
			ID:          Explicit(shortURL),
			Mode:        CreateOnly,
		})

		require.NoError(t, err)
		assert.Equal(t, URLPair{ShortURL: shortURL, OriginalURL: originalURL}, effect.URLPair)
		assert.False(t, effect.HasPrevious)
		assert.True(t, effect.Created())

		got, err := sut.GetOriginalURL(ctx, shortURL)

		require.NoError(t, err)
		assert.Equal(t, originalURL, got)
	})

	t.Run("original url not found by short url", func(t *testing.T) {
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		_, err := sut.GetOriginalURL(ctx, "thislinkdoesntexist")

		assert.ErrorIs(t, err, ErrOriginalURLNotFound)
	})

	t.Run("create url with registered short url", func(t *testing.T) {
		const (
			shortURL    = "alreadyexists"
			originalURL = "https://github.com/nestjam"
		)
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)
		createURL(t, sut, shortURL, originalURL)

		for i := 0; i < 2; i++ {
			_, err := sut.Upsert(ctx, UpsertRequest{
				OriginalURL: "https://something.new",
				ID:          Explicit(shortURL),
				Mode:        CreateOnly,
			})

			assert.ErrorIs(t, err, ErrAlreadyRegistered)
			assertOriginalURL(t, sut, shortURL, originalURL)
		}
	})

	t.Run("update missing url", func(t *testing.T) {
		const (
			shortURL    = "hello"
			originalURL = "https://google.com"
		)
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		effect, err := sut.Upsert(ctx, UpsertRequest{
			OriginalURL: originalURL,
			ID:          Explicit(shortURL),
			Mode:        UpdateOnly,
		})

		require.NoError(t, err)
		assert.False(t, effect.HasPrevious)
		assert.Equal(t, "/hello now redirects to https://google.com", effect.String())
		assertOriginalURL(t, sut, shortURL, originalURL)
	})

	t.Run("update existing url", func(t *testing.T) {
		const (
			shortURL    = "hello"
			previousURL = "https://google.com"
			originalURL = "https://duckduckgo.com"
		)
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)
		createURL(t, sut, shortURL, previousURL)

		effect, err := sut.Upsert(ctx, UpsertRequest{
			OriginalURL: originalURL,
			ID:          Explicit(shortURL),
			Mode:        UpdateOnly,
		})

		require.NoError(t, err)
		assert.True(t, effect.HasPrevious)
		assert.Equal(t, previousURL, effect.Previous)
		assert.Equal(t,
			"/hello now redirects to https://duckduckgo.com (was https://google.com)",
			effect.String())
		assertOriginalURL(t, sut, shortURL, originalURL)
	})

	t.Run("malformed url is rejected", func(t *testing.T) {
		const (
			shortURL    = "hello"
			originalURL = "https://google.com"
		)
		for _, mode := range []Mode{CreateOnly, UpdateOnly} {
			t.Run(mode.String(), func(t *testing.T) {
				sut, tearDown := c.NewURLStore()
				t.Cleanup(tearDown)
				createURL(t, sut, shortURL, originalURL)

				for _, id := range []IDSpec{Explicit(shortURL), Explicit("other"), Derived()} {
					_, err := sut.Upsert(ctx, UpsertRequest{
						OriginalURL: "this is not a valid URL",
						ID:          id,
						Mode:        mode,
					})

					var malformed *MalformedTargetError
					assert.ErrorAs(t, err, &malformed)
				}

				assertOriginalURL(t, sut, shortURL, originalURL)
				_, err := sut.GetOriginalURL(ctx, "other")
				assert.ErrorIs(t, err, ErrOriginalURLNotFound)
			})
		}
	})

	t.Run("create url with derived short url", func(t *testing.T) {
		const originalURL = "https://google.com"
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		effect, err := sut.Upsert(ctx, UpsertRequest{
			OriginalURL: originalURL,
			ID:          Derived(),
			Mode:        CreateOnly,
		})

		require.NoError(t, err)
		assert.Equal(t, shortener.Hash(originalURL), effect.ShortURL)
		assertOriginalURL(t, sut, effect.ShortURL, originalURL)

		_, err = sut.Upsert(ctx, UpsertRequest{
			OriginalURL: originalURL,
			ID:          Derived(),
			Mode:        CreateOnly,
		})

		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("short url is empty", func(t *testing.T) {
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		_, err := sut.Upsert(ctx, UpsertRequest{
			OriginalURL: "https://google.com",
			ID:          Explicit(""),
			Mode:        CreateOnly,
		})

		assert.ErrorIs(t, err, ErrShortURLIsEmpty)
	})

	t.Run("short url is too long", func(t *testing.T) {
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)
		shortURL := strings.Repeat("a", MaxShortURLLength+1)

		_, err := sut.Upsert(ctx, UpsertRequest{
			OriginalURL: "https://google.com",
			ID:          Explicit(shortURL),
			Mode:        CreateOnly,
		})

		assert.ErrorIs(t, err, ErrShortURLIsInvalid)
		_, err = sut.GetOriginalURL(ctx, shortURL)
		assert.ErrorIs(t, err, ErrOriginalURLNotFound)
	})

	t.Run("short url contains newline", func(t *testing.T) {
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		_, err := sut.Upsert(ctx, UpsertRequest{
			OriginalURL: "https://google.com",
			ID:          Explicit("a\nb"),
			Mode:        UpdateOnly,
		})

		assert.ErrorIs(t, err, ErrShortURLIsInvalid)
	})

	t.Run("concurrent creates with distinct short urls", func(t *testing.T) {
		const count = 64
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		var wg sync.WaitGroup
		errs := make([]error, count)
		for i := 0; i < count; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = sut.Upsert(ctx, UpsertRequest{
					OriginalURL: fmt.Sprintf("https://example.com/%d", i),
					ID:          Explicit(fmt.Sprintf("id%d", i)),
					Mode:        CreateOnly,
				})
			}(i)
		}
		wg.Wait()

		for i := 0; i < count; i++ {
			require.NoError(t, errs[i])
			assertOriginalURL(t, sut, fmt.Sprintf("id%d", i), fmt.Sprintf("https://example.com/%d", i))
		}
	})

	t.Run("concurrent creates with same short url", func(t *testing.T) {
		const count = 64
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		var wg sync.WaitGroup
		errs := make([]error, count)
		for i := 0; i < count; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = sut.Upsert(ctx, UpsertRequest{
					OriginalURL: fmt.Sprintf("https://example.com/%d", i),
					ID:          Explicit("same"),
					Mode:        CreateOnly,
				})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t, errors.Is(err, ErrAlreadyRegistered), err)
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("store is available", func(t *testing.T) {
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		assert.True(t, sut.IsAvailable(ctx))
	})
}

func createURL(t *testing.T, store URLStore, shortURL, originalURL string) {
	t.Helper()

	_, err := store.Upsert(context.Background(), UpsertRequest{
		OriginalURL: originalURL,
		ID:          Explicit(shortURL),
		Mode:        CreateOnly,
	})
	require.NoError(t, err)
}

func assertOriginalURL(t *testing.T, store URLStore, shortURL, want string) {
	t.Helper()

	got, err := store.GetOriginalURL(context.Background(), shortURL)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
