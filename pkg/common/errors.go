package common

import (
	"errors"
	"net/http"
)

// Common error types
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrConflict       = errors.New("resource conflict")
	ErrValidation     = errors.New("validation error")
)

// Machine readable error codes returned in the error envelope.
const (
	CodeNoApplicablePricing    = "NO_APPLICABLE_PRICING"
	CodeInvalidDistance        = "INVALID_DISTANCE"
	CodeInvalidDuration        = "INVALID_DURATION"
	CodeConfigValidationFailed = "CONFIG_VALIDATION_FAILED"
	CodePartyNotConfigured     = "PARTY_NOT_CONFIGURED"
	CodeConcurrentUpdate       = "CONCURRENT_UPDATE"
	CodeNotFound               = "NOT_FOUND"
	CodeConflict               = "CONFLICT"
	CodeBadRequest             = "BAD_REQUEST"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code      int         `json:"code"`
	ErrorCode string      `json:"error_code,omitempty"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Err       error       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithCode sets the machine readable error code.
func (e *AppError) WithCode(code string) *AppError {
	e.ErrorCode = code
	return e
}

// WithDetails attaches structured details, e.g. field violations.
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:      http.StatusNotFound,
		ErrorCode: CodeNotFound,
		Message:   message,
		Err:       err,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Message: message,
		Err:     ErrUnauthorized,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Message: message,
		Err:     ErrForbidden,
	}
}

func NewBadRequestError(message string, err error) *AppError {
	return &AppError{
		Code:      http.StatusBadRequest,
		ErrorCode: CodeBadRequest,
		Message:   message,
		Err:       err,
	}
}

func NewUnprocessableError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: message,
		Err:     err,
	}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     err,
	}
}

func NewConflictError(message string, err error) *AppError {
	if err == nil {
		err = ErrConflict
	}
	return &AppError{
		Code:      http.StatusConflict,
		ErrorCode: CodeConflict,
		Message:   message,
		Err:       err,
	}
}

func NewValidationError(message string, details interface{}) *AppError {
	return &AppError{
		Code:      http.StatusUnprocessableEntity,
		ErrorCode: CodeConfigValidationFailed,
		Message:   message,
		Details:   details,
		Err:       ErrValidation,
	}
}
