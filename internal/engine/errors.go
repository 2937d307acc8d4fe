// Package engine holds the error taxonomy shared by the static and rendered engines
package engine

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is. Each EngineError matches the one of its code.
var (
	ErrStaleReference = errors.New("stale element reference")
	ErrNotFound       = errors.New("element not found")
	ErrNavigation     = errors.New("navigation failed")
	ErrParseError     = errors.New("failed to parse response")
	ErrFetchExhausted = errors.New("fetch failed after retries")
)

// ErrorCode classifies an engine failure
type ErrorCode string

const (
	ErrCodeStale      ErrorCode = "STALE_REFERENCE"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeNavigation ErrorCode = "NAVIGATION"
	ErrCodeFetch      ErrorCode = "FETCH"
	ErrCodeParseError ErrorCode = "PARSE_ERROR"
)

var sentinels = map[ErrorCode]error{
	ErrCodeStale:      ErrStaleReference,
	ErrCodeNotFound:   ErrNotFound,
	ErrCodeNavigation: ErrNavigation,
	ErrCodeFetch:      ErrFetchExhausted,
	ErrCodeParseError: ErrParseError,
}

// EngineError is a classified failure on a target, a selector or a URL
type EngineError struct {
	Code       ErrorCode
	Target     string
	Underlying error
}

func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Target, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Target)
}

func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is matches another EngineError by code, or the sentinel of the code
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return target == sentinels[e.Code]
}

// NewEngineError creates an EngineError for target
func NewEngineError(code ErrorCode, target string, err error) *EngineError {
	return &EngineError{Code: code, Target: target, Underlying: err}
}

// IsStale reports whether err is a stale-reference failure
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleReference)
}

// CodeOf returns the code of the first EngineError in err's chain, or ""
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}
