package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Assessment specific errors
	CodeAssessmentNotFound    ErrorCode = "ASSESSMENT_NOT_FOUND"
	CodeAssessmentIncomplete  ErrorCode = "ASSESSMENT_INCOMPLETE"
	CodeSessionExpired        ErrorCode = "SESSION_EXPIRED"

	// Sync specific errors
	CodeRateLimited  ErrorCode = "RATE_LIMITED"
	CodeHubSpotError ErrorCode = "HUBSPOT_API_ERROR"
	CodeSyncQueue    ErrorCode = "SYNC_QUEUE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithContext attaches additional context to the error for the HTTP layer
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Helper functions for common errors
func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewAssessmentNotFoundError(assessmentID string) *DomainError {
	return NewError(CodeAssessmentNotFound, fmt.Sprintf("Assessment not found with ID: %s", assessmentID), nil)
}

func NewAssessmentIncompleteError(assessmentID string) *DomainError {
	return NewError(CodeAssessmentIncomplete, fmt.Sprintf("Assessment %s has not been completed", assessmentID), nil)
}

func NewSessionExpiredError(sessionID string) *DomainError {
	return NewError(CodeSessionExpired, fmt.Sprintf("Session %s has expired", sessionID), nil)
}

func NewRateLimitedError(retryAfter time.Duration) *DomainError {
	return NewError(CodeRateLimited, "Rate limit exceeded for HubSpot API", nil).
		WithContext("retry_after_seconds", int(retryAfter.Seconds()))
}

func NewSyncQueueError(message string, cause error) *DomainError {
	return NewError(CodeSyncQueue, message, cause)
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation failures and itself an error
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", e[0].Error())
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("has invalid format: %s", value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("value %d is out of range [%d, %d]", value, min, max)}
}
