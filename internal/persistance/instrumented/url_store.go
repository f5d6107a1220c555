package instrumented

import (
	"context"
	"errors"
	"time"

	"github.com/nestjam/goto/internal/domain"
	"github.com/nestjam/goto/internal/metrics"
)

// URLStore records metrics for every operation of the wrapped store.
type URLStore struct {
	next domain.URLStore
}

func New(next domain.URLStore) *URLStore {
	return &URLStore{next: next}
}

func (s *URLStore) GetOriginalURL(ctx context.Context, shortURL string) (string, error) {
	const op = "get_original_url"
	start := time.Now()
	url, err := s.next.GetOriginalURL(ctx, shortURL)
	s.recordMetrics(op, err, start)
	return url, err
}

func (s *URLStore) Upsert(ctx context.Context, req domain.UpsertRequest) (domain.Effect, error) {
	op := "upsert_" + req.Mode.String()
	start := time.Now()
	effect, err := s.next.Upsert(ctx, req)
	s.recordMetrics(op, err, start)
	return effect, err
}

func (s *URLStore) IsAvailable(ctx context.Context) bool {
	return s.next.IsAvailable(ctx)
}

func (s *URLStore) Close() error {
	return s.next.Close()
}

func (s *URLStore) recordMetrics(operation string, err error, start time.Time) {
	duration := time.Since(start).Seconds()
	metrics.StorageOperationsTotal.WithLabelValues(operation, status(err)).Inc()
	metrics.StorageOperationDuration.WithLabelValues(operation).Observe(duration)
}

// status separates expected outcomes from failures of the store itself.
func status(err error) string {
	var malformed *domain.MalformedTargetError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrOriginalURLNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return "conflict"
	case errors.As(err, &malformed),
		errors.Is(err, domain.ErrShortURLIsEmpty),
		errors.Is(err, domain.ErrShortURLIsInvalid):
		return "invalid"
	case errors.Is(err, domain.ErrLockPoisoned):
		return "poisoned"
	default:
		return "error"
	}
}
