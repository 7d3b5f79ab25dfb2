// Package core provides core types and errors for the portfolio chat proxy.
package core

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates a malformed or missing message (400)
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	// ErrorTypeRateLimit indicates the caller exceeded its request window (429)
	ErrorTypeRateLimit ErrorType = "rate_limit_error"
	// ErrorTypeMisconfigured indicates missing server configuration such as the upstream credential (500)
	ErrorTypeMisconfigured ErrorType = "misconfigured_error"
	// ErrorTypeUpstream indicates a failed call to the completion API (500)
	ErrorTypeUpstream ErrorType = "upstream_error"
)

// GatewayError is the base error type for all errors returned to callers.
type GatewayError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Provider   string    `json:"provider,omitempty"`
	// UpstreamStatus is the status code the provider answered with, if any.
	UpstreamStatus int `json:"-"`
	// RetryAfter is set on rate limit errors.
	RetryAfter time.Duration `json:"-"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Provider != "" {
		msg = fmt.Sprintf("[%s] %s", e.Provider, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements the error unwrapping interface
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *GatewayError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to the response body sent to callers.
func (e *GatewayError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": e.Message,
	}
}

// NewInvalidRequestError creates a new invalid request error (400)
func NewInvalidRequestError(message string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewRateLimitError creates a new rate limit error (429)
func NewRateLimitError(message string, retryAfter time.Duration) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeRateLimit,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
		RetryAfter: retryAfter,
	}
}

// NewMisconfiguredError creates a new server configuration error (500)
func NewMisconfiguredError(message string) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeMisconfigured,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewUpstreamError creates a new upstream failure (500)
func NewUpstreamError(provider string, message string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeUpstream,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Provider:   provider,
		Err:        err,
	}
}

// ParseProviderError turns a non-success provider response into an upstream error.
// The provider's message is kept for operator logs; callers never see it.
func ParseProviderError(provider string, statusCode int, body []byte, originalErr error) *GatewayError {
	message := string(body)
	if gjson.ValidBytes(body) {
		if m := gjson.GetBytes(body, "error.message"); m.Exists() && m.String() != "" {
			message = m.String()
		}
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}

	err := NewUpstreamError(provider, message, originalErr)
	err.UpstreamStatus = statusCode
	return err
}
