// Package apperror defines the application-wide error taxonomy.
// Every error that crosses a handler boundary is wrapped in an AppError so
// clients always receive the same JSON shape and the correct HTTP status,
// while the underlying cause stays server-side for logging.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError for status-code mapping.
type ErrorType int

const (
	// UnknownError is for unspecified errors.
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the database.
	DatabaseError
	// ConfigError represents an error in application configuration.
	ConfigError
	// AuthError represents an authentication failure: invalid credentials
	// or a missing/invalid session token. Always 401.
	AuthError
	// NotFoundError represents a resource that does not exist.
	NotFoundError
	// ValidationError represents invalid client input.
	ValidationError
	// BadRequestError represents a malformed request.
	BadRequestError
	// InternalError represents an unexpected server-side failure.
	InternalError
	// ExternalServiceError represents a failure of an upstream dependency,
	// such as the AI detection service.
	ExternalServiceError
	// ConflictError represents a duplicate unique field (email, phone).
	ConflictError
)

// AppError is the application error type. It carries a client-safe Message
// and an optional underlying error that is never sent to clients.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case DatabaseError, ConfigError, InternalError:
		return http.StatusInternalServerError
	case AuthError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case ExternalServiceError:
		return http.StatusBadGateway
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates an AppError of an arbitrary type.
func NewAppError(errType ErrorType, message string, underlying error) *AppError {
	return &AppError{Type: errType, Message: message, Err: underlying}
}

// NewDatabaseError creates a DatabaseError.
func NewDatabaseError(message string, underlying error) *AppError {
	return NewAppError(DatabaseError, message, underlying)
}

// NewConfigError creates a ConfigError.
func NewConfigError(message string, underlying error) *AppError {
	return NewAppError(ConfigError, message, underlying)
}

// NewAuthError creates an AuthError.
func NewAuthError(message string, underlying error) *AppError {
	return NewAppError(AuthError, message, underlying)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(message string, underlying error) *AppError {
	return NewAppError(NotFoundError, message, underlying)
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string, underlying error) *AppError {
	return NewAppError(ValidationError, message, underlying)
}

// NewBadRequestError creates a BadRequestError.
func NewBadRequestError(message string, underlying error) *AppError {
	return NewAppError(BadRequestError, message, underlying)
}

// NewInternalError creates an InternalError.
func NewInternalError(message string, underlying error) *AppError {
	return NewAppError(InternalError, message, underlying)
}

// NewExternalServiceError creates an ExternalServiceError.
func NewExternalServiceError(message string, underlying error) *AppError {
	return NewAppError(ExternalServiceError, message, underlying)
}

// NewConflictError creates a ConflictError.
func NewConflictError(message string, underlying error) *AppError {
	return NewAppError(ConflictError, message, underlying)
}

// ErrorResponse is the JSON body sent to clients for any failed request.
type ErrorResponse struct {
	Error string `json:"error" example:"A description of the error"`
}

// ToResponse converts an AppError to its client-facing representation.
// Only Message is exposed; the wrapped error never leaves the server.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

// FromError extracts an *AppError from err, reporting whether one was found
// anywhere in the chain.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsAuthError reports whether err is an AuthError.
func IsAuthError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == AuthError
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ValidationError
}

// IsConflictError reports whether err is a ConflictError.
func IsConflictError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ConflictError
}

// IsExternalServiceError reports whether err is an ExternalServiceError.
func IsExternalServiceError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ExternalServiceError
}
