package source

import (
	"errors"
	"fmt"
)

// Kind classifies connector failures.
type Kind int

const (
	// KindUnavailable covers network, auth and timeout failures. Retryable;
	// the affected section degrades to absent.
	KindUnavailable Kind = iota + 1
	// KindParse means the response shape changed. Also degrades the section,
	// but indicates a structural mismatch that needs a manual fix.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error tags a failure with its source identity and kind so the orchestrator
// can log it and move on without losing the classification.
type Error struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Unavailable wraps err as a network/auth/timeout failure of src.
func Unavailable(src string, err error) error {
	return &Error{Kind: KindUnavailable, Source: src, Err: err}
}

// ParseFailure wraps err as an unexpected-response-shape failure of src.
func ParseFailure(src string, err error) error {
	return &Error{Kind: KindParse, Source: src, Err: err}
}

// KindOf extracts the failure kind, or zero if err is not a source error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
