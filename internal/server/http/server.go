package server

import (
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nestjam/goto/internal/domain"
	"github.com/nestjam/goto/internal/domain/service"
	"github.com/nestjam/goto/internal/middleware"
)

const (
	// DefaultMaxBodySize ограничивает размер тела запроса на создание ссылки.
	DefaultMaxBodySize = 256

	locationHeader       = "Location"
	contentTypeHeader    = "Content-Type"
	textPlain            = "text/plain; charset=utf-8"
	keyParam             = "id"
	overflowMessage      = "overflow"
	internalErrorMessage = "internal error"
)

// Server обрабатывает HTTP запросы к хранилищу коротких ссылок.
type Server struct {
	service       *service.ShortenerService
	router        chi.Router
	logger        *zap.Logger
	trustedSubnet string
	maxBodySize   int64
}

// Option определяет опцию настройки сервера.
type Option func(*Server)

// New создает сервер. Конструктор принимает на вход сервис сокращения ссылок и набор опций.
func New(svc *service.ShortenerService, options ...Option) *Server {
	r := chi.NewRouter()
	s := &Server{
		service:     svc,
		router:      r,
		logger:      zap.NewNop(),
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range options {
		opt(s)
	}

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.ResponseLogger(s.logger))
	r.Use(middleware.Metrics)

	r.Get("/ping", s.ping)

	r.Group(func(r chi.Router) {
		r.Use(middleware.TrustedSubnet(s.trustedSubnet))

		r.Handle("/metrics", promhttp.Handler())
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestDecoder, middleware.ResponseEncoder)

		r.Get("/{id}", s.redirect)
		r.Post("/{id}", s.register)
		r.Put("/{id}", s.replace)
		r.Post("/", s.shorten)
	})

	return s
}

// ServeHTTP обрабатывает запрос.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, keyParam)
	url, err := s.service.GetOriginalURL(r.Context(), key)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set(locationHeader, url)
	writeText(w, http.StatusFound, fmt.Sprintf("redirecting to %s ...", url))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	target, ok := s.readTarget(w, r)
	if !ok {
		return
	}

	effect, err := s.service.RegisterURL(r.Context(), chi.URLParam(r, keyParam), target)
	s.respond(w, r, effect, err)
}

func (s *Server) replace(w http.ResponseWriter, r *http.Request) {
	target, ok := s.readTarget(w, r)
	if !ok {
		return
	}

	effect, err := s.service.ReplaceURL(r.Context(), chi.URLParam(r, keyParam), target)
	s.respond(w, r, effect, err)
}

func (s *Server) shorten(w http.ResponseWriter, r *http.Request) {
	target, ok := s.readTarget(w, r)
	if !ok {
		return
	}

	effect, err := s.service.ShortenURL(r.Context(), target)
	s.respond(w, r, effect, err)
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	status := http.StatusInternalServerError
	if s.service.IsAvailable(r.Context()) {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, effect domain.Effect, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeText(w, http.StatusOK, effect.String())
}

// readTarget читает исходную ссылку из тела запроса. При ошибке ответ уже отправлен.
func (s *Server) readTarget(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBodySize+1))
	_ = r.Body.Close()
	if err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return "", false
	}

	if int64(len(body)) > s.maxBodySize {
		writeText(w, http.StatusBadRequest, overflowMessage)
		return "", false
	}

	if !utf8.Valid(body) {
		writeText(w, http.StatusBadRequest, "invalid request body: invalid utf-8 sequence")
		return "", false
	}

	return string(body), true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var malformed *domain.MalformedTargetError
	var persistence *domain.PersistenceError

	switch {
	case errors.Is(err, domain.ErrOriginalURLNotFound):
		writeText(w, http.StatusNotFound, domain.ErrOriginalURLNotFound.Error())
	case errors.As(err, &malformed):
		writeText(w, http.StatusBadRequest, malformed.Error())
	case errors.Is(err, domain.ErrAlreadyRegistered):
		writeText(w, http.StatusBadRequest, domain.ErrAlreadyRegistered.Error())
	case errors.Is(err, domain.ErrShortURLIsEmpty):
		writeText(w, http.StatusBadRequest, domain.ErrShortURLIsEmpty.Error())
	case errors.Is(err, domain.ErrShortURLIsInvalid):
		writeText(w, http.StatusBadRequest, domain.ErrShortURLIsInvalid.Error())
	case errors.Is(err, domain.ErrLockPoisoned):
		s.internalError(w, r, err, domain.ErrLockPoisoned.Error())
	case errors.As(err, &persistence):
		s.internalError(w, r, err, persistence.Error())
	default:
		s.internalError(w, r, err, internalErrorMessage)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	requestID, _ := middleware.GetRequestID(r.Context())
	s.logger.Error("request failed",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("uri", r.RequestURI),
		zap.Error(err),
	)
	writeText(w, http.StatusInternalServerError, message)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set(contentTypeHeader, textPlain)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// WithLogger задает логер для сервера.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxBodySize задает максимальный размер тела запроса в байтах.
func WithMaxBodySize(size int64) Option {
	return func(s *Server) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithTrustedSubnet задает доверенную подсеть для доступа к метрикам.
func WithTrustedSubnet(subnet string) Option {
	return func(s *Server) {
		s.trustedSubnet = subnet
	}
}
