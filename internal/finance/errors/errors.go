package errors

import (
	"errors"
	"fmt"
	"strings"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidationError reports whether err is any kind of client-side input error.
func IsValidationError(err error) bool {
	var validationError *ValidationError
	if errors.As(err, &validationError) {
		return true
	}
	var expenseErr *InvalidExpenseDataError
	return errors.As(err, &expenseErr)
}

var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrInvalidExpenseID = NewValidationError("Invalid expense ID")

	ErrNegativeIncome = NewValidationError("Income must not be negative")
	ErrNegativeDebt   = NewValidationError("Debt must not be negative")

	// ErrInvalidExpenseData is the sentinel wrapped by every InvalidExpenseDataError.
	ErrInvalidExpenseData = errors.New("invalid expense data")
)

// InvalidExpenseDataError rejects an expense record, and with it the batch the
// record belongs to. Index is the 1-based position in the batch, 0 for a
// single record.
type InvalidExpenseDataError struct {
	Index  int
	Field  string
	Reason string
}

func (e *InvalidExpenseDataError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("Validation error at expense %d: %s %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *InvalidExpenseDataError) Unwrap() error {
	return ErrInvalidExpenseData
}

func NewInvalidExpenseData(index int, field, reason string) error {
	return &InvalidExpenseDataError{Index: index, Field: field, Reason: reason}
}

type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	errorMessages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		errorMessages[i] = err.Error()
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(errorMessages, "; "))
}

func (ve *ValidationErrors) Add(err error) {
	ve.Errors = append(ve.Errors, err)
}

// ErrOrNil returns ve only when it holds at least one error.
func (ve *ValidationErrors) ErrOrNil() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}

func (ve *ValidationErrors) Messages() []string {
	messages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		messages[i] = err.Error()
	}
	return messages
}

func IsValidationErrors(err error) bool {
	var validationErrors *ValidationErrors
	ok := errors.As(err, &validationErrors)
	return ok
}
