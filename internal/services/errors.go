package services

import (
	"errors"
	"fmt"

	apperrors "github.com/studtest/quizbot/internal/errors"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	ErrTestNotFound    = errors.New("test not found")
	ErrResultNotFound  = errors.New("result not found")
	ErrEmptySubmission = errors.New("submission has no answers")
	ErrInvalidScore    = errors.New("invalid score value")
	ErrNotifierNotSet  = errors.New("no notifier configured")
	ErrWorkbookNotSet  = errors.New("no results workbook configured")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ServiceError wraps an underlying error with an operation name for
// log correlation.
type ServiceError struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
