package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nestjam/goto/internal/domain"
	"github.com/nestjam/goto/internal/metrics"
)

// ShortenerService выполняет сокращение ссылок, их замену и получение исходной ссылки.
type ShortenerService struct {
	store domain.URLStore
}

// New создает сервис сокращения ссылок.
func New(store domain.URLStore) *ShortenerService {
	return &ShortenerService{
		store: store,
	}
}

// GetOriginalURL возвращает исходную ссылку по ключу.
func (s *ShortenerService) GetOriginalURL(ctx context.Context, key string) (string, error) {
	const op = "get original url"

	url, err := s.store.GetOriginalURL(ctx, key)
	if err != nil {
		return "", errors.Wrap(err, op)
	}

	metrics.RedirectsTotal.Inc()
	return url, nil
}

// ShortenURL сокращает исходную ссылку, ключ вычисляется из хеша ссылки.
func (s *ShortenerService) ShortenURL(ctx context.Context, url string) (domain.Effect, error) {
	const op = "shorten url"

	effect, err := s.upsert(ctx, url, domain.Derived(), domain.CreateOnly)
	if err != nil {
		return domain.Effect{}, errors.Wrap(err, op)
	}

	return effect, nil
}

// RegisterURL сокращает исходную ссылку под указанным ключом. Занятый ключ не перезаписывается.
func (s *ShortenerService) RegisterURL(ctx context.Context, key, url string) (domain.Effect, error) {
	const op = "register url"

	effect, err := s.upsert(ctx, url, domain.Explicit(key), domain.CreateOnly)
	if err != nil {
		return domain.Effect{}, errors.Wrap(err, op)
	}

	return effect, nil
}

// ReplaceURL связывает ключ с новой исходной ссылкой, создавая его при необходимости.
func (s *ShortenerService) ReplaceURL(ctx context.Context, key, url string) (domain.Effect, error) {
	const op = "replace url"

	effect, err := s.upsert(ctx, url, domain.Explicit(key), domain.UpdateOnly)
	if err != nil {
		return domain.Effect{}, errors.Wrap(err, op)
	}

	return effect, nil
}

func (s *ShortenerService) upsert(ctx context.Context, url string, id domain.IDSpec, mode domain.Mode) (domain.Effect, error) {
	effect, err := s.store.Upsert(ctx, domain.UpsertRequest{
		OriginalURL: url,
		ID:          id,
		Mode:        mode,
	})
	if err != nil {
		return domain.Effect{}, err
	}

	if effect.Created() {
		metrics.URLsCreatedTotal.Inc()
	} else {
		metrics.URLsReplacedTotal.Inc()
	}

	return effect, nil
}

// IsAvailable возвращает true, если сервис доступен.
func (s *ShortenerService) IsAvailable(ctx context.Context) bool {
	return s.store.IsAvailable(ctx)
}
