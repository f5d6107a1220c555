package domain

import (
	"context"
	"fmt"
	"net/url"
	"unicode"
	"unicode/utf8"
)

// MaxShortURLLength ограничивает длину ключа в байтах, чтобы запись журнала
// оставалась однострочной.
const MaxShortURLLength = 100

// URLPair связывает ключ сокращенной ссылки с исходным URL.
type URLPair struct {
	ShortURL    string
	OriginalURL string
}

// Mode определяет, как Upsert поступает с уже существующим ключом.
type Mode int

const (
	CreateOnly Mode = iota // только создание, занятый ключ - ошибка
	UpdateOnly             // замена исходного URL, отсутствующий ключ создается
)

func (m Mode) String() string {
	switch m {
	case CreateOnly:
		return "create"
	case UpdateOnly:
		return "update"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// IDSpec задает ключ сокращенной ссылки явно или требует получить его из хеша исходного URL.
type IDSpec struct {
	shortURL string
	derived  bool
}

// Explicit возвращает явно заданный ключ.
func Explicit(shortURL string) IDSpec {
	return IDSpec{shortURL: shortURL}
}

// Derived возвращает спецификацию ключа, вычисляемого из исходного URL.
func Derived() IDSpec {
	return IDSpec{derived: true}
}

// IsDerived возвращает true, если ключ вычисляется из исходного URL.
func (s IDSpec) IsDerived() bool {
	return s.derived
}

// ShortURL возвращает явно заданный ключ.
func (s IDSpec) ShortURL() string {
	return s.shortURL
}

// UpsertRequest описывает запрос на создание или изменение сокращенной ссылки.
type UpsertRequest struct {
	OriginalURL string
	ID          IDSpec
	Mode        Mode
}

// Effect описывает результат успешного Upsert.
type Effect struct {
	URLPair
	Previous    string // исходный URL до изменения
	HasPrevious bool   // ключ существовал до изменения
}

// Created возвращает true, если ключ был добавлен впервые.
func (e Effect) Created() bool {
	return !e.HasPrevious
}

// String возвращает описание результата для пользователя.
func (e Effect) String() string {
	msg := fmt.Sprintf("/%s now redirects to %s", e.ShortURL, e.OriginalURL)
	if e.HasPrevious {
		msg += fmt.Sprintf(" (was %s)", e.Previous)
	}
	return msg
}

// URLStore определяет хранилище сокращенных ссылок.
type URLStore interface {
	GetOriginalURL(ctx context.Context, shortURL string) (string, error)
	Upsert(ctx context.Context, req UpsertRequest) (Effect, error)
	IsAvailable(ctx context.Context) bool
	Close() error
}

// ValidateShortURL проверяет явно заданный ключ: он не пуст, не длиннее
// MaxShortURLLength байт и не содержит управляющих символов.
func ValidateShortURL(shortURL string) error {
	if shortURL == "" {
		return ErrShortURLIsEmpty
	}

	if len(shortURL) > MaxShortURLLength || !utf8.ValidString(shortURL) {
		return ErrShortURLIsInvalid
	}

	for _, r := range shortURL {
		if unicode.IsControl(r) {
			return ErrShortURLIsInvalid
		}
	}

	return nil
}

// ValidateTarget проверяет, что исходный URL является абсолютным URL.
func ValidateTarget(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return NewMalformedTargetError(err.Error())
	}

	if !u.IsAbs() {
		return NewMalformedTargetError("relative URL without a base")
	}

	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return NewMalformedTargetError("empty host")
	}

	return nil
}
