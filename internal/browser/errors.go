package browser

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Callers branch with
// errors.Is; the wrapping StepError/ExpectationError carry the detail.
var (
	// ErrNotActionable means an element never became visible and
	// enabled within the wait window.
	ErrNotActionable = errors.New("element not actionable")

	// ErrSettleTimeout means a navigation did not reach network-idle
	// within the wait window.
	ErrSettleTimeout = errors.New("page did not settle")

	// ErrExpectation means a polled assertion condition never held.
	ErrExpectation = errors.New("expectation failed")

	// ErrUnsupportedBrowser means the configured browser name is not
	// one the backend can drive. Raised at session setup, never
	// mid-test.
	ErrUnsupportedBrowser = errors.New("unsupported browser")
)

// StepError describes a failed interaction or navigation step.
type StepError struct {
	Verb     string
	Selector string
	Err      error
}

func (e *StepError) Error() string {
	if e.Selector == "" {
		return fmt.Sprintf("%s: %v", e.Verb, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Verb, e.Selector, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ExpectationError describes an assertion that never held within its
// timeout. Observed carries the last value seen while polling, so the
// failure reads expected-vs-actual without re-running the test.
type ExpectationError struct {
	Selector  string
	Condition string
	Observed  string
}

func (e *ExpectationError) Error() string {
	msg := fmt.Sprintf("expected %q to be %s", e.Selector, e.Condition)
	if e.Observed != "" {
		msg += fmt.Sprintf(" (observed: %s)", e.Observed)
	}
	return msg
}

func (e *ExpectationError) Unwrap() error { return ErrExpectation }

func notActionable(verb, selector string, cause error) error {
	return &StepError{Verb: verb, Selector: selector, Err: fmt.Errorf("%w: %v", ErrNotActionable, cause)}
}

func stepFailed(verb, selector string, cause error) error {
	return &StepError{Verb: verb, Selector: selector, Err: cause}
}
