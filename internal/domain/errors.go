package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Extraction and scoring specific errors
	ErrMalformedDocument  ErrorCode = "MALFORMED_DOCUMENT"
	ErrNoKeyMatch         ErrorCode = "NO_KEY_MATCH"
	ErrAmbiguousKeyMatch  ErrorCode = "AMBIGUOUS_KEY_MATCH"
	ErrInvalidAnswerValue ErrorCode = "INVALID_ANSWER_VALUE"
	ErrUnscorableQuestion ErrorCode = "UNSCORABLE_QUESTION"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
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
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewMalformedDocumentError(message string) *DomainError {
	return NewError(ErrMalformedDocument, message, nil)
}

func NewNoKeyMatchError(testName string) *DomainError {
	return NewError(ErrNoKeyMatch, fmt.Sprintf("No answer key found for test: %s", testName), nil)
}

func NewAmbiguousKeyMatchError(testName string, candidates []string) *DomainError {
	return NewError(ErrAmbiguousKeyMatch, fmt.Sprintf("Multiple answer keys match test %s: %v", testName, candidates), nil)
}

func NewInvalidAnswerValueError(value string) *DomainError {
	return NewError(ErrInvalidAnswerValue, fmt.Sprintf("Answer value out of range A-E: %q", value), nil)
}
