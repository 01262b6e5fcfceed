// Package apperror carries the error taxonomy shared by the validator, the
// store and the HTTP layer. Handlers map a Code to an HTTP status.
package apperror

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeInvalidExtension    Code = "invalid_extension"
	CodeOversizedInput      Code = "oversized_input"
	CodeEmptyInput          Code = "empty_input"
	CodeDecodeError         Code = "decode_error"
	CodeMalformedCSV        Code = "malformed_csv"
	CodeDuplicateHeader     Code = "duplicate_header"
	CodeColumnCountMismatch Code = "column_count_mismatch"
	CodeInvalidPeriod       Code = "invalid_period_format"
	CodeInvalidOperator     Code = "invalid_operator"
	CodeInvalidFilterValue  Code = "invalid_filter_value"
	CodeInvalidPagination   Code = "invalid_pagination"
	CodeMissingField        Code = "missing_field"
	CodeInvalidID           Code = "invalid_id"

	CodeNotFound       Code = "not_found"
	CodeNoMatchingData Code = "no_matching_data"

	CodePersistence Code = "persistence_error"
	CodeAuthFailure Code = "auth_failure"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there
// is none.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps err to the status code the API answers with. Errors outside
// the taxonomy are internal errors.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeOversizedInput:
		return http.StatusRequestEntityTooLarge
	case CodeInvalidExtension, CodeEmptyInput, CodeDecodeError, CodeMalformedCSV,
		CodeDuplicateHeader, CodeColumnCountMismatch, CodeInvalidPeriod,
		CodeInvalidOperator, CodeInvalidFilterValue, CodeInvalidPagination,
		CodeMissingField, CodeInvalidID:
		return http.StatusBadRequest
	case CodeNotFound, CodeNoMatchingData:
		return http.StatusNotFound
	case CodeAuthFailure:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
