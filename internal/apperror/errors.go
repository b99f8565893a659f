package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to react to it (HTTP mapping, retries).
type Kind string

const (
	KindValidation           Kind = "validation"
	KindReferentialIntegrity Kind = "referential_integrity"
	KindConcurrency          Kind = "concurrency"
	KindNotFound             Kind = "not_found"
)

// Sentinels for errors.Is checks. An *Error matches the sentinel of its Kind.
var (
	ErrValidation           = &Error{Kind: KindValidation, Code: "validation_failed", Message: "validation failed"}
	ErrReferentialIntegrity = &Error{Kind: KindReferentialIntegrity, Code: "referential_integrity", Message: "referential integrity violated"}
	ErrConcurrency          = &Error{Kind: KindConcurrency, Code: "concurrent_modification", Message: "concurrent modification, retry the operation"}
	ErrNotFound             = &Error{Kind: KindNotFound, Code: "not_found", Message: "not found"}
)

// Error is the single error type surfaced by the ledger, repositories and services.
type Error struct {
	Kind    Kind
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality against sentinels, so wrapped errors still match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t == sentinel(e.Kind)
}

func sentinel(kind Kind) *Error {
	switch kind {
	case KindValidation:
		return ErrValidation
	case KindReferentialIntegrity:
		return ErrReferentialIntegrity
	case KindConcurrency:
		return ErrConcurrency
	case KindNotFound:
		return ErrNotFound
	}
	return nil
}

// Validation reports an invariant violation on a write.
func Validation(field, code, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Code: code, Message: message}
}

// NotFound reports a missing entity.
func NotFound(entity string, id any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    entity + "_not_found",
		Message: fmt.Sprintf("%s %v not found", entity, id),
	}
}

// Referential reports an operation that would break a reference between entities.
func Referential(code, message string) *Error {
	return &Error{Kind: KindReferentialIntegrity, Code: code, Message: message}
}

// Concurrency reports a collision the caller should retry as a whole.
func Concurrency(message string, err error) *Error {
	return &Error{Kind: KindConcurrency, Code: "concurrent_modification", Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or "" if there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// As extracts the first *Error in the chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
