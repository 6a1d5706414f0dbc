package report

import (
	"errors"
	"fmt"

	"github.com/Protocol-Lattice/growth-report/pkg/models"
)

// ParseError means the model answered but the reply was not a usable JSON object.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InputError means the request could not be turned into a model call.
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid report input: %v", e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

var errNoModel = errors.New("report agent has no model")

// FailureKind names the cause of a fallback: "parse", "input", "panic" or a
// models.ErrorKind ("transport", "auth", "provider", "empty_response", "unknown").
func FailureKind(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return "parse"
	}
	var ie *InputError
	if errors.As(err, &ie) {
		return "input"
	}
	var pn *panicError
	if errors.As(err, &pn) {
		return "panic"
	}
	return models.KindOf(err).String()
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("report agent panic: %v", e.value)
}
