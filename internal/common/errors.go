package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Pipeline error taxonomy
var (
	// ErrSchemaMismatch marks a raw record missing a column its variant requires.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrInvalidValue marks a raw record whose value cannot be converted.
	ErrInvalidValue = errors.New("invalid value")
	// ErrIdentityCollision marks a record whose invoice number was already kept.
	ErrIdentityCollision = errors.New("identity collision")
	// ErrRepositoryUnavailable marks a query against the store that failed for good.
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	// ErrInvalidFilterInput marks rejected filter criteria.
	ErrInvalidFilterInput = errors.New("invalid filter input")
)

// Error codes used with AppError.
const (
	CodeSchemaMismatch        = "SCHEMA_MISMATCH"
	CodeInvalidValue          = "INVALID_VALUE"
	CodeIdentityCollision     = "IDENTITY_COLLISION"
	CodeRepositoryUnavailable = "REPOSITORY_UNAVAILABLE"
	CodeInvalidFilterInput    = "INVALID_FILTER_INPUT"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func SchemaMismatch(format string, args ...any) error {
	return NewAppError(CodeSchemaMismatch, fmt.Sprintf(format, args...), ErrSchemaMismatch)
}

func InvalidValue(format string, args ...any) error {
	return NewAppError(CodeInvalidValue, fmt.Sprintf(format, args...), ErrInvalidValue)
}

func InvalidFilterInput(format string, args ...any) error {
	return NewAppError(CodeInvalidFilterInput, fmt.Sprintf(format, args...), ErrInvalidFilterInput)
}

// RepositoryUnavailable wraps the last store failure so both the sentinel and
// the underlying error stay reachable through errors.Is.
func RepositoryUnavailable(operation string, cause error) error {
	return NewAppError(CodeRepositoryUnavailable, operation, errors.Join(ErrRepositoryUnavailable, cause))
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func UnavailableError(message string) error {
	return status.Error(codes.Unavailable, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatus maps an application error onto a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrInvalidFilterInput), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return InvalidArgumentError(err.Error())
	case errors.Is(err, ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, ErrRepositoryUnavailable):
		return UnavailableError(err.Error())
	default:
		return InternalError(err.Error())
	}
}
