package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrInvalidRequest  ErrorType = "INVALID_REQUEST"
	ErrUnknownCommand  ErrorType = "UNKNOWN_COMMAND"
	ErrUpstream        ErrorType = "UPSTREAM_ERROR"
	ErrUpstreamTimeout ErrorType = "UPSTREAM_TIMEOUT"
	ErrConfig          ErrorType = "CONFIG_ERROR"
	ErrAuditSink       ErrorType = "AUDIT_SINK_ERROR"
	ErrAuthFailed      ErrorType = "AUTH_FAILED"
	ErrRateLimited     ErrorType = "RATE_LIMITED"
	ErrInternal        ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func NewUnknownCommand(name string) *AppError {
	return New(ErrUnknownCommand, fmt.Sprintf("unknown command %q", name), nil)
}

func NewUpstream(msg string, cause error) *AppError {
	return New(ErrUpstream, msg, cause)
}

func NewConfig(msg string) *AppError {
	return New(ErrConfig, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

// TypeOf returns the ErrorType carried by err, or ErrInternal for foreign errors.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	return Wrap(err).Type
}

// IsValidation reports whether err was caused by the caller rather than by the upstream or the gateway.
func IsValidation(err error) bool {
	switch TypeOf(err) {
	case ErrInvalidRequest, ErrUnknownCommand:
		return true
	default:
		return false
	}
}

// IsUpstream reports whether err came from the upstream call.
func IsUpstream(err error) bool {
	switch TypeOf(err) {
	case ErrUpstream, ErrUpstreamTimeout:
		return true
	default:
		return false
	}
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrInvalidRequest, ErrUnknownCommand:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrUpstream:
		return http.StatusBadGateway
	case ErrUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrUnknownCommand:
		return "GET /api_list returns the supported commands."
	case ErrUpstream, ErrUpstreamTimeout:
		return "Retry the request later."
	case ErrAuthFailed:
		return "Check the X-Gateway-Key header."
	case ErrRateLimited:
		return "Slow down and retry."
	default:
		return ""
	}
}
