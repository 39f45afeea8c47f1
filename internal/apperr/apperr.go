package apperr

import "errors"

// Code is the failure category of a CRM action, independent of transport.
type Code string

const (
	CodeValidation      Code = "validation_failed"
	CodeNotFound        Code = "not_found"
	CodeRemote          Code = "remote_failure"
	CodeMalformedImport Code = "malformed_import"
	CodeUnauthorized    Code = "unauthorized"
	CodeInternal        Code = "internal_error"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches by code so callers can write errors.Is(err, apperr.Validation).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Targets for errors.Is.
var (
	Validation      = &Error{Code: CodeValidation}
	NotFound        = &Error{Code: CodeNotFound}
	Remote          = &Error{Code: CodeRemote}
	MalformedImport = &Error{Code: CodeMalformedImport}
	Unauthorized    = &Error{Code: CodeUnauthorized}
)

func New(code Code, msg string) error { return &Error{Code: code, Message: msg} }

// Wrap tags err with code. An error that already carries a code keeps it.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the user-facing message carried by err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
