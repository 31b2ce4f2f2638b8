package errx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// StoreErrorMessage describes dataset persistence failures.
	StoreErrorMessage = "dataset persistence failed"
	// AssistantErrorMessage is the only detail callers get about assistant failures.
	AssistantErrorMessage = "assistant unavailable"
	// NotFoundMessage describes lookups of unknown resources.
	NotFoundMessage = "resource not found"
	// InvalidInputMessage describes malformed caller input.
	InvalidInputMessage = "invalid input"
)

// Error kinds. Match them with errors.Is against any *AppError.
var (
	ErrPersistence          = errors.New("persistence failure")
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
)

// AppError wraps an underlying error with an HTTP status, a safe message and a kind.
type AppError struct {
	Err     error
	Kind    error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NewKind creates an AppError tagged with one of the error kinds above.
func NewKind(kind, err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Kind:    kind,
		Status:  status,
		Message: message,
	}
}

// WrapRedis maps Redis errors to AppError with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return NewKind(ErrNotFound, err, http.StatusNotFound, RedisNotFoundMessage)
	}
	return NewKind(ErrPersistence, err, http.StatusBadGateway, RedisErrorMessage)
}

// WrapStore marks err as a persistence failure.
func WrapStore(err error) error {
	if err == nil {
		return nil
	}
	return NewKind(ErrPersistence, err, http.StatusInternalServerError, StoreErrorMessage)
}

// WrapAssistant collapses any assistant failure into a single unavailable error.
func WrapAssistant(err error) error {
	if err == nil {
		return nil
	}
	return NewKind(ErrAssistantUnavailable, err, http.StatusServiceUnavailable, AssistantErrorMessage)
}

// NotFound reports an unknown resource.
func NotFound(format string, args ...any) error {
	return NewKind(ErrNotFound, fmt.Errorf(format, args...), http.StatusNotFound, NotFoundMessage)
}

// InvalidInput reports malformed caller input.
func InvalidInput(format string, args ...any) error {
	return NewKind(ErrInvalidInput, fmt.Errorf(format, args...), http.StatusBadRequest, InvalidInputMessage)
}

// Is reports whether the target is the error kind or matches the underlying error.
func (e *AppError) Is(target error) bool {
	if e.Kind != nil && e.Kind == target {
		return true
	}
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the safe message carried by err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return SystemErrorMessage
}
