package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nestjam/goto/internal/domain"
	"github.com/nestjam/goto/internal/persistance/file"
	"github.com/nestjam/goto/internal/shortener"
)

// Journal durably records accepted urls.
type Journal interface {
	Append(shortURL, originalURL string) error
}

// InmemoryURLStore keeps urls in a map guarded by a single RWMutex. Writes
// hold the lock while the journal is appended, reads never touch the journal.
type InmemoryURLStore struct {
	m        map[string]string
	journal  Journal
	closer   func() error
	logger   *zap.Logger
	mu       sync.RWMutex
	poisoned bool
}

// Option configures the store.
type Option func(*InmemoryURLStore)

// WithLog seeds the store from the entries of l and appends every write to it.
// The store owns l and closes it in Close.
func WithLog(l *file.Log) Option {
	return func(s *InmemoryURLStore) {
		for _, pair := range l.Entries() {
			s.m[pair.ShortURL] = pair.OriginalURL
		}
		s.journal = l
		s.closer = l.Close
	}
}

// WithJournal appends every write to j.
func WithJournal(j Journal) Option {
	return func(s *InmemoryURLStore) {
		s.journal = j
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *InmemoryURLStore) {
		s.logger = logger
	}
}

func New(options ...Option) *InmemoryURLStore {
	s := &InmemoryURLStore{
		m:      make(map[string]string),
		logger: zap.NewNop(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

func (u *InmemoryURLStore) GetOriginalURL(ctx context.Context, shortURL string) (string, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if u.poisoned {
		return "", domain.ErrLockPoisoned
	}

	originalURL, ok := u.m[shortURL]

	if !ok {
		return "", domain.ErrOriginalURLNotFound
	}

	return originalURL, nil
}

func (u *InmemoryURLStore) Upsert(ctx context.Context, req domain.UpsertRequest) (domain.Effect, error) {
	if err := domain.ValidateTarget(req.OriginalURL); err != nil {
		return domain.Effect{}, err
	}

	shortURL := req.ID.ShortURL()
	if req.ID.IsDerived() {
		shortURL = shortener.Hash(req.OriginalURL)
	} else if err := domain.ValidateShortURL(shortURL); err != nil {
		return domain.Effect{}, err
	}

	pair := domain.URLPair{
		ShortURL:    shortURL,
		OriginalURL: req.OriginalURL,
	}

	return u.write(pair, req.Mode)
}

func (u *InmemoryURLStore) write(pair domain.URLPair, mode domain.Mode) (effect domain.Effect, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.poisoned {
		return domain.Effect{}, domain.ErrLockPoisoned
	}

	defer func() {
		if r := recover(); r != nil {
			u.poisoned = true
			u.logger.Error("url store poisoned",
				zap.String("short_url", pair.ShortURL),
				zap.Any("panic", r))
			effect = domain.Effect{}
			err = errors.Wrap(domain.ErrLockPoisoned, fmt.Sprintf("panic during %s: %v", mode, r))
		}
	}()

	previous, exists := u.m[pair.ShortURL]

	switch mode {
	case domain.CreateOnly:
		if exists {
			return domain.Effect{}, domain.ErrAlreadyRegistered
		}
	case domain.UpdateOnly:
	default:
		return domain.Effect{}, errors.Errorf("unknown upsert mode %s", mode)
	}

	u.m[pair.ShortURL] = pair.OriginalURL
	effect = domain.Effect{
		URLPair:     pair,
		Previous:    previous,
		HasPrevious: exists,
	}

	if u.journal == nil {
		return effect, nil
	}

	// The table is not rolled back: memory may run ahead of the journal.
	if err = u.journal.Append(pair.ShortURL, pair.OriginalURL); err != nil {
		u.logger.Error("failed to append url to journal",
			zap.String("short_url", pair.ShortURL),
			zap.Error(err))
		return domain.Effect{}, domain.NewPersistenceError(err)
	}

	return effect, nil
}

func (u *InmemoryURLStore) IsAvailable(ctx context.Context) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return !u.poisoned
}

// Close closes the journal attached with WithLog.
func (u *InmemoryURLStore) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closer == nil {
		return nil
	}

	closer := u.closer
	u.closer = nil
	u.journal = nil

	if err := closer(); err != nil {
		return errors.Wrap(err, "close url store")
	}

	return nil
}
