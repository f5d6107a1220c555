package domain

import (
	"errors"
	"fmt"
)

// Ошибки, связанные с хранилищем ссылок.
var (
	// ErrOriginalURLNotFound означает, что исходный URL не найден.
	ErrOriginalURLNotFound = errors.New("not found")

	// ErrAlreadyRegistered означает, что ключ уже занят.
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrShortURLIsEmpty означает, что ключ не задан.
	ErrShortURLIsEmpty = errors.New("short url is empty")

	// ErrShortURLIsInvalid означает, что ключ слишком длинный или содержит управляющие символы.
	ErrShortURLIsInvalid = errors.New("short url is invalid")

	// ErrLockPoisoned означает, что хранилище повреждено паникой во время записи.
	ErrLockPoisoned = errors.New("url store lock is poisoned")
)

// MalformedTargetError определяет ошибку, когда исходный URL не является абсолютным URL.
type MalformedTargetError struct {
	reason string
}

// NewMalformedTargetError создает экземпляр ошибки с указанием причины.
func NewMalformedTargetError(reason string) *MalformedTargetError {
	return &MalformedTargetError{reason: reason}
}

// Error возвращает текст ошибки.
func (e *MalformedTargetError) Error() string {
	return fmt.Sprintf("malformed URL: %s", e.reason)
}

// Reason возвращает причину, по которой URL отклонен.
func (e *MalformedTargetError) Reason() string {
	return e.reason
}

// PersistenceError определяет ошибку записи в журнал хранилища.
// Изменение в памяти к этому моменту уже применено и не откатывается.
type PersistenceError struct {
	err error
}

// NewPersistenceError создает экземпляр ошибки.
func NewPersistenceError(err error) *PersistenceError {
	return &PersistenceError{err: err}
}

// Error возвращает текст ошибки.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist url: %v", e.err)
}

// Unwrap возвращает исходную ошибку ввода-вывода.
func (e *PersistenceError) Unwrap() error {
	return e.err
}
