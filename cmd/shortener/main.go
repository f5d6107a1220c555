package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nestjam/goto/internal/cert"
	"github.com/nestjam/goto/internal/config"
	"github.com/nestjam/goto/internal/domain/service"
	"github.com/nestjam/goto/internal/factory"
	server "github.com/nestjam/goto/internal/server/http"
)

const (
	eventKey        = "event"
	shutdownTimeout = 5 * time.Second
	certValidFor    = 365 * 24 * time.Hour
)

func main() {
	conf, err := config.Load(os.Args, config.SystemEnvironment())
	if err != nil {
		panic(err)
	}

	logger, tearDownLogger, err := factory.NewLogger(conf.LogLevel)
	if err != nil {
		panic(err)
	}
	defer tearDownLogger()

	store, tearDownStorage, err := factory.NewStorage(conf, logger)
	if err != nil {
		logger.Fatal(err.Error(), zap.String(eventKey, "create storage"))
	}
	defer tearDownStorage()

	handler := server.New(service.New(store),
		server.WithLogger(logger),
		server.WithMaxBodySize(conf.MaxBodySize),
		server.WithTrustedSubnet(conf.TrustedSubnet))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              conf.ServerAddress,
		Handler:           handler,
		ReadHeaderTimeout: shutdownTimeout,
	}

	if conf.EnableHTTPS {
		srv.TLSConfig, err = cert.TLSConfig(cert.DefaultHosts, certValidFor)
		if err != nil {
			logger.Fatal(err.Error(), zap.String(eventKey, "generate certificate"))
		}
	}

	listenAndServe(ctx, srv, logger)
}

func listenAndServe(ctx context.Context, srv *http.Server, logger *zap.Logger) {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Running server",
			zap.String("address", srv.Addr),
			zap.Bool("https", srv.TLSConfig != nil))
		if srv.TLSConfig != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err.Error(), zap.String(eventKey, "start server"))
		}
		return
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err.Error(), zap.String(eventKey, "shutdown server"))
	}
}
