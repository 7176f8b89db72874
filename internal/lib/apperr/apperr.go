// Package apperr описывает типизированные ошибки приложения. Каждая ошибка
// несёт человекочитаемое сообщение и вид, из которого выводится HTTP-статус.
// Преобразование в HTTP-ответ выполняется в одном месте, в response.Fail.
package apperr

import (
	"errors"
	"net/http"
)

// Kind — категория ошибки.
type Kind int

const (
	// KindInternal — непредвиденная ошибка сервера.
	KindInternal Kind = iota
	// KindValidation — некорректные входные данные.
	KindValidation
	// KindConflict — нарушение уникальности.
	KindConflict
	// KindUnauthenticated — отсутствуют или неверны учётные данные.
	KindUnauthenticated
	// KindForbidden — недостаточно прав.
	KindForbidden
	// KindNotFound — ресурс не найден.
	KindNotFound
	// KindTooManyRequests — превышен лимит запросов.
	KindTooManyRequests
)

// Error — ошибка с видом и сообщением для клиента.
// Err хранит исходную причину и в ответ не попадает.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status возвращает HTTP-статус, соответствующий виду ошибки.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Validation создаёт ошибку валидации (400).
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Conflict создаёт ошибку конфликта (409).
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Unauthenticated создаёт ошибку аутентификации (401).
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Forbidden создаёт ошибку авторизации (403).
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound создаёт ошибку отсутствия ресурса (404).
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// TooManyRequests создаёт ошибку превышения лимита (429).
func TooManyRequests(msg string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: msg}
}

// Internal создаёт внутреннюю ошибку (500) с исходной причиной.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf возвращает вид ошибки. Для ошибок не из этого пакета возвращает KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
