package factory

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	conf "github.com/nestjam/goto/internal/config"
	"github.com/nestjam/goto/internal/domain"
	f "github.com/nestjam/goto/internal/persistance/file"
	"github.com/nestjam/goto/internal/persistance/inmemory"
	"github.com/nestjam/goto/internal/persistance/instrumented"
)

// NewStorage создает хранилище ссылок по конфигурации. Если задан путь к журналу,
// хранилище восстанавливается из него и дописывает в него каждое изменение.
// Если журнал не удается открыть, хранилище работает только в памяти;
// журнал с неразборчивым содержимым считается ошибкой.
// Возвращаемая функция закрывает хранилище.
func NewStorage(conf conf.Config, logger *zap.Logger) (domain.URLStore, func(), error) {
	const op = "new storage"

	options := []inmemory.Option{inmemory.WithLogger(logger)}

	if conf.FileStoragePath != "" {
		log, err := f.Open(conf.FileStoragePath)

		switch {
		case f.IsMalformed(err):
			return nil, nil, errors.Wrap(err, op)
		case err != nil:
			logger.Warn("Failed to open file storage, using in-memory storage",
				zap.String("path", conf.FileStoragePath),
				zap.Error(err),
			)
		default:
			logger.Info("Using file storage",
				zap.String("path", conf.FileStoragePath),
				zap.Int("entries", len(log.Entries())),
			)
			options = append(options, inmemory.WithLog(log))
		}
	} else {
		logger.Info("Using in-memory storage")
	}

	store := instrumented.New(inmemory.New(options...))

	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", zap.Error(err))
		}
	}, nil
}

// NewLogger создает логер с указанным уровнем логирования.
func NewLogger(level string) (*zap.Logger, func(), error) {
	const op = "new logger"

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	config := zap.NewProductionConfig()
	config.Level = lvl
	logger, err := config.Build()
	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	return logger, func() { _ = logger.Sync() }, nil
}
