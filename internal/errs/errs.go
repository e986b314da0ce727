package errs

import (
	"errors"
	"net/http"
)

// Code код ошибки приложения
type Code string

const (
	// Validation - некорректные входные данные, хранилище не затрагивалось
	Validation Code = "validation"
	// NotFound - запись не найдена или не в требуемом состоянии
	NotFound Code = "not_found"
	// Store - ошибка базы данных (соединение, ограничения, синтаксис)
	Store Code = "store"
	// Encoding - ошибка генерации изображения
	Encoding Code = "encoding"
	// Internal - все остальное
	Internal Code = "internal"
)

// Error ошибка с кодом
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" && e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New создает ошибку с кодом и сообщением
func New(code Code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap создает ошибку с кодом, сообщением и причиной
func Wrap(code Code, message string, cause error) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// CodeOf возвращает код ошибки, по умолчанию Internal
func CodeOf(err error) Code {
	if err == nil {
		return Internal
	}
	var coded *Error
	if errors.As(err, &coded) {
		if coded.Code == "" {
			return Internal
		}
		return coded.Code
	}
	return Internal
}

// Is проверяет, что ошибка несет указанный код
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// MessageOf возвращает сообщение для клиента.
// Причина (Err) в сообщение не попадает: драйверные ошибки, пути и DSN остаются только в логах.
func MessageOf(err error) string {
	if err == nil {
		return string(Internal)
	}
	var coded *Error
	if errors.As(err, &coded) && coded.Message != "" {
		return coded.Message
	}
	return "internal error"
}

// HTTPStatus сопоставляет код ошибки HTTP статусу
func HTTPStatus(code Code) int {
	switch code {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
