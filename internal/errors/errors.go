// Package errors provides enhanced error types with helpful context and suggestions
package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Chat engine errors
	ErrCodeDataUnavailable ErrorCode = "DATA_UNAVAILABLE"
	ErrCodeBrandNotFound   ErrorCode = "BRAND_NOT_FOUND"
	ErrCodeModelNotFound   ErrorCode = "MODEL_NOT_FOUND"
	ErrCodeEmptyScope      ErrorCode = "EMPTY_SCOPE"

	// Predictor errors
	ErrCodePredictorUnavailable ErrorCode = "PREDICTOR_UNAVAILABLE"
	ErrCodePredictorResponse    ErrorCode = "PREDICTOR_BAD_RESPONSE"

	// Database errors
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseQuery      ErrorCode = "DATABASE_QUERY_FAILED"

	// Authentication errors
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeTokenCreation      ErrorCode = "TOKEN_CREATION_FAILED"
	ErrCodeSessionCreation    ErrorCode = "SESSION_CREATION_FAILED"
	ErrCodeNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeInsufficientPerms  ErrorCode = "INSUFFICIENT_PERMISSIONS"
	ErrCodeQuotaExceeded      ErrorCode = "QUERY_QUOTA_EXCEEDED"

	// Input validation errors
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED_FIELD"

	// Cache errors
	ErrCodeCacheRead  ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWrite ErrorCode = "CACHE_WRITE_FAILED"
)

// EnhancedError represents an error with additional context and helpful information
type EnhancedError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.Details != "" {
		sb.WriteString(fmt.Sprintf(": %s", e.Details))
	}
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(" (cause: %v)", e.Cause))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error chain unwrapping
func (e *EnhancedError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly error message with suggestions
func (e *EnhancedError) UserMessage() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString(fmt.Sprintf("\n\nDetails: %s", e.Details))
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n\nSuggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// New creates a new EnhancedError
func New(code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Metadata: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with enhanced context
func Wrap(err error, code ErrorCode, message string) *EnhancedError {
	return &EnhancedError{
		Code:     code,
		Message:  message,
		Cause:    err,
		Metadata: make(map[string]interface{}),
	}
}

// WithDetails adds detailed information about the error
func (e *EnhancedError) WithDetails(details string) *EnhancedError {
	e.Details = details
	return e
}

// WithSuggestion adds a suggestion on how to fix the error
func (e *EnhancedError) WithSuggestion(suggestion string) *EnhancedError {
	e.Suggestion = suggestion
	return e
}

// WithMetadata adds additional metadata to the error
func (e *EnhancedError) WithMetadata(key string, value interface{}) *EnhancedError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Common error constructors with pre-configured messages

// NewDataUnavailableError creates an error for a missing or empty dataset
func NewDataUnavailableError() *EnhancedError {
	return New(ErrCodeDataUnavailable, "Car data is unavailable").
		WithDetails("The car dataset could not be loaded or contains no records").
		WithSuggestion("Check that the dataset file or database is reachable and seeded, then restart the service.").
		WithMetadata("retryable", true)
}

// NewBrandNotFoundError creates an error for an unresolvable brand reference
func NewBrandNotFoundError(fragment string) *EnhancedError {
	return New(ErrCodeBrandNotFound, "Brand not found").
		WithDetails(fmt.Sprintf("No brand in the dataset matches '%s'", fragment)).
		WithSuggestion("Ask 'what brands are available?' to see every brand I know about.").
		WithMetadata("fragment", fragment)
}

// NewModelNotFoundError creates an error for an unresolvable model reference
func NewModelNotFoundError(fragment string) *EnhancedError {
	return New(ErrCodeModelNotFound, "Car model not found").
		WithDetails(fmt.Sprintf("No car model in the dataset matches '%s'", fragment)).
		WithSuggestion("Check the model name for typos, or ask about a brand instead (for example 'info on TESLA').").
		WithMetadata("fragment", fragment)
}

// NewEmptyScopeError creates an error for an aggregate over an empty filtered subset
func NewEmptyScopeError(scope string) *EnhancedError {
	return New(ErrCodeEmptyScope, "No cars match that scope").
		WithDetails(fmt.Sprintf("After filtering, no records were left in scope: %s", scope)).
		WithSuggestion("Broaden the question, for example by dropping the brand or price constraint.").
		WithMetadata("scope", scope)
}

// NewPredictorUnavailableError creates an error for a missing or failing price model
func NewPredictorUnavailableError(err error) *EnhancedError {
	return Wrap(err, ErrCodePredictorUnavailable, "Price predictor is unavailable").
		WithDetails("The price estimation model could not be reached").
		WithSuggestion("Chat answers still work; try the price estimate again in a moment.").
		WithMetadata("retryable", true)
}

// NewPredictorResponseError creates an error for a malformed predictor reply
func NewPredictorResponseError(detail string) *EnhancedError {
	return New(ErrCodePredictorResponse, "Price predictor returned an invalid estimate").
		WithDetails(detail).
		WithSuggestion("This is a model-serving problem; check the predictor logs.")
}

// NewInvalidCredentialsError creates an error for authentication failures
func NewInvalidCredentialsError() *EnhancedError {
	return New(ErrCodeInvalidCredentials, "Invalid username or password").
		WithDetails("Authentication failed with the provided credentials").
		WithSuggestion("Please check your username and password and try again. If you've forgotten your password, contact your administrator.")
}

// NewTokenCreationError creates an error for token creation failures
func NewTokenCreationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeTokenCreation, "Failed to create authentication token").
		WithDetails("The system was unable to generate an authentication token").
		WithSuggestion("This is an internal server error. Please try logging in again. If the problem persists, contact support.").
		WithMetadata("retryable", true)
}

// NewSessionCreationError creates an error for session creation failures
func NewSessionCreationError(err error) *EnhancedError {
	return Wrap(err, ErrCodeSessionCreation, "Failed to create session").
		WithDetails("The system was unable to create a session").
		WithSuggestion("This is an internal server error. Please try logging in again. If the problem persists, contact support.").
		WithMetadata("retryable", true)
}

// NewNotAuthenticatedError creates an error for unauthenticated requests
func NewNotAuthenticatedError() *EnhancedError {
	return New(ErrCodeNotAuthenticated, "Authentication required").
		WithDetails("This endpoint requires authentication").
		WithSuggestion("Please log in using the /api/v1/auth/login endpoint, or include a valid API key in the 'X-API-Key' header.")
}

// NewQuotaExceededError creates an error for an exhausted daily query quota
func NewQuotaExceededError(used, limit int) *EnhancedError {
	return New(ErrCodeQuotaExceeded, "Daily query quota exceeded").
		WithDetails(fmt.Sprintf("You have used %d of %d queries for today", used, limit)).
		WithSuggestion("Wait for the quota to reset at midnight UTC, or ask an administrator to raise it.").
		WithMetadata("used", used).
		WithMetadata("limit", limit)
}

// NewInvalidInputError creates an error for invalid input
func NewInvalidInputError(field string, reason string) *EnhancedError {
	return New(ErrCodeInvalidInput, "Invalid input").
		WithDetails(fmt.Sprintf("Field '%s' is invalid: %s", field, reason)).
		WithSuggestion("Please check the API documentation for the expected format and try again.")
}

// NewDatabaseConnectionError creates an error for database connection failures
func NewDatabaseConnectionError(err error) *EnhancedError {
	return Wrap(err, ErrCodeDatabaseConnection, "Database connection failed").
		WithDetails("Unable to connect to the database").
		WithSuggestion("This is an internal server error. The service may be experiencing issues. Please try again in a moment.").
		WithMetadata("retryable", true)
}

// NewDatabaseQueryError creates an error for database query failures
func NewDatabaseQueryError(err error, operation string) *EnhancedError {
	return Wrap(err, ErrCodeDatabaseQuery, "Database query failed").
		WithDetails(fmt.Sprintf("Failed to execute database operation: %s", operation)).
		WithSuggestion("This is an internal server error. If the problem persists, contact support.").
		WithMetadata("retryable", true)
}
