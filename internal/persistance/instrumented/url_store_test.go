package instrumented

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestjam/goto/internal/domain"
	"github.com/nestjam/goto/internal/metrics"
	"github.com/nestjam/goto/internal/persistance/inmemory"
)

func TestURLStore(t *testing.T) {
	domain.URLStoreContract{
		NewURLStore: func() (domain.URLStore, func()) {
			return New(inmemory.New()), func() {}
		},
	}.Test(t)
}

func TestRecordMetrics(t *testing.T) {
	ctx := context.Background()
	sut := New(inmemory.New())
	created := metrics.StorageOperationsTotal.WithLabelValues("upsert_create", "success")
	conflicts := metrics.StorageOperationsTotal.WithLabelValues("upsert_create", "conflict")
	misses := metrics.StorageOperationsTotal.WithLabelValues("get_original_url", "not_found")
	createdBefore := testutil.ToFloat64(created)
	conflictsBefore := testutil.ToFloat64(conflicts)
	missesBefore := testutil.ToFloat64(misses)

	req := domain.UpsertRequest{
		OriginalURL: "https://google.com",
		ID:          domain.Explicit("metrics"),
		Mode:        domain.CreateOnly,
	}
	_, err := sut.Upsert(ctx, req)
	require.NoError(t, err)
	_, err = sut.Upsert(ctx, req)
	require.ErrorIs(t, err, domain.ErrAlreadyRegistered)
	_, err = sut.GetOriginalURL(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrOriginalURLNotFound)

	assert.InDelta(t, createdBefore+1, testutil.ToFloat64(created), 0)
	assert.InDelta(t, conflictsBefore+1, testutil.ToFloat64(conflicts), 0)
	assert.InDelta(t, missesBefore+1, testutil.ToFloat64(misses), 0)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "no error", want: "success"},
		{name: "not found", err: domain.ErrOriginalURLNotFound, want: "not_found"},
		{name: "already registered", err: domain.ErrAlreadyRegistered, want: "conflict"},
		{name: "malformed url", err: domain.NewMalformedTargetError("empty host"), want: "invalid"},
		{name: "empty short url", err: domain.ErrShortURLIsEmpty, want: "invalid"},
		{name: "invalid short url", err: domain.ErrShortURLIsInvalid, want: "invalid"},
		{name: "poisoned", err: domain.ErrLockPoisoned, want: "poisoned"},
		{name: "io failure", err: domain.NewPersistenceError(assert.AnError), want: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status(tt.err))
		})
	}
}
