package domain

import (
	"context"
	"fmt"
)

// A URLStoreDelegate allows to extend the behavior of the test double for negative scenarios
// for URLStore consumers.
type URLStoreDelegate struct {
	GetOriginalURLFunc func(ctx context.Context, shortURL string) (string, error)
	UpsertFunc         func(ctx context.Context, req UpsertRequest) (Effect, error)
	IsAvailableFunc    func(ctx context.Context) bool
	delegate           URLStore
}

func NewURLStoreDelegate(delegate URLStore) *URLStoreDelegate {
	return &URLStoreDelegate{delegate: delegate}
}

func (u *URLStoreDelegate) GetOriginalURL(ctx context.Context, shortURL string) (string, error) {
	if u.GetOriginalURLFunc != nil {
		return u.GetOriginalURLFunc(ctx, shortURL)
	}
	url, err := u.delegate.GetOriginalURL(ctx, shortURL)

	if err != nil {
		return "", fmt.Errorf("get url from store delegate: %w", err)
	}

	return url, nil
}

func (u *URLStoreDelegate) Upsert(ctx context.Context, req UpsertRequest) (Effect, error) {
	if u.UpsertFunc != nil {
		return u.UpsertFunc(ctx, req)
	}
	effect, err := u.delegate.Upsert(ctx, req)

	if err != nil {
		return Effect{}, fmt.Errorf("upsert url to store delegate: %w", err)
	}

	return effect, nil
}

func (u *URLStoreDelegate) IsAvailable(ctx context.Context) bool {
	if u.IsAvailableFunc != nil {
		return u.IsAvailableFunc(ctx)
	}

	return u.delegate.IsAvailable(ctx)
}

func (u *URLStoreDelegate) Close() error {
	return u.delegate.Close()
}
