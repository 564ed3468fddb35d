package httperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind groups business errors into the classes the API exposes.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindOutOfHours        Kind = "out_of_hours"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindForbidden         Kind = "forbidden"
)

type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e BusinessError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// ErrBusiness keeps the code-only constructor used across the use cases.
// Its kind is derived from the code when it is a well known one.
func ErrBusiness(code string) error {
	return BusinessError{Kind: kindForCode(code), Code: code}
}

func Validation(code, message string) error {
	return BusinessError{Kind: KindValidation, Code: code, Message: message}
}

func NotFoundErr(code, message string) error {
	return BusinessError{Kind: KindNotFound, Code: code, Message: message}
}

func OutOfHours(code, message string) error {
	return BusinessError{Kind: KindOutOfHours, Code: code, Message: message}
}

func Conflict(code, message string) error {
	return BusinessError{Kind: KindConflict, Code: code, Message: message}
}

func Forbidden(code, message string) error {
	return BusinessError{Kind: KindForbidden, Code: code, Message: message}
}

// InvalidTransition names both ends of the rejected lifecycle move.
func InvalidTransition(from, to string) error {
	return BusinessError{
		Kind:    KindInvalidTransition,
		Code:    "invalid_transition",
		Message: fmt.Sprintf("cannot move appointment from %s to %s", from, to),
	}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// IsKind reports whether err is a business error of the given kind.
func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

func kindForCode(code string) Kind {
	switch code {
	case "time_conflict", "block_conflict":
		return KindConflict
	case "outside_working_hours", "day_off":
		return KindOutOfHours
	case "invalid_transition", "invalid_state":
		return KindInvalidTransition
	case "forbidden":
		return KindForbidden
	}
	if strings.HasSuffix(code, "_not_found") {
		return KindNotFound
	}
	return KindValidation
}
