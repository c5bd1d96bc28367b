// Package gameerrors defines the stable error kinds returned across the game engine.
package gameerrors

import (
	"errors"
	"fmt"
)

// Kind is the stable, client-visible classification of a rejected operation.
type Kind string

const (
	KindNotFound                  Kind = "NotFound"
	KindDuplicateDecision         Kind = "DuplicateDecision"
	KindAlreadyPurchased          Kind = "AlreadyPurchased"
	KindInsufficientBudget        Kind = "InsufficientBudget"
	KindValidation                Kind = "ValidationError"
	KindConcurrencyConflict       Kind = "ConcurrencyConflict"
	KindPartialFailureDuringReset Kind = "PartialFailureDuringReset"
	KindInternal                  Kind = "Internal"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound                  = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDuplicateDecision         = &Error{Kind: KindDuplicateDecision, Message: "decision already made for this statement"}
	ErrAlreadyPurchased          = &Error{Kind: KindAlreadyPurchased, Message: "already purchased"}
	ErrInsufficientBudget        = &Error{Kind: KindInsufficientBudget, Message: "insufficient budget"}
	ErrValidation                = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrConcurrencyConflict       = &Error{Kind: KindConcurrencyConflict, Message: "concurrent update conflict"}
	ErrPartialFailureDuringReset = &Error{Kind: KindPartialFailureDuringReset, Message: "reset did not complete cleanly"}
)

// Error is a classified game error. Details carries numeric context such as
// before/after row counts for a failed reset.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound is shorthand for a NotFound error naming the missing entity.
func NotFound(entity string, id any) *Error {
	return New(KindNotFound, "%s %v not found", entity, id)
}

// Validation is shorthand for a ValidationError.
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

// MessageOf returns the human-readable message of a classified error.
func MessageOf(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return "internal error"
}

// DetailsOf returns the numeric details of a classified error, if any.
func DetailsOf(err error) map[string]int {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Details
	}
	return nil
}
