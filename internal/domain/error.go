package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")

	// Wizard errors
	ErrMissingPriorStepData = errors.New("personal information step must be completed first")
	ErrUnknownStep          = errors.New("unknown step for this onboarding path")
	ErrStepNotCurrent       = errors.New("step is not the current step")
	ErrSubmissionInFlight   = errors.New("a submission for this step is already in progress")
	ErrWizardDisposed       = errors.New("wizard session has been closed")
	ErrNoActiveSession      = errors.New("no active onboarding session")
	ErrRateLimited          = errors.New("too many submissions, try again later")
)

// RemoteSubmissionError wraps a failed UpdateForm round-trip. Transport failures carry
// Err; business-logic rejections (status != true) carry only Message.
type RemoteSubmissionError struct {
	Step    string
	Message string
	Err     error
}

func (e *RemoteSubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote submission of %s failed: %v", e.Step, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("remote submission of %s rejected: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("remote submission of %s rejected", e.Step)
}

func (e *RemoteSubmissionError) Unwrap() error { return e.Err }

// Rejected reports whether the backend answered but refused the payload.
func (e *RemoteSubmissionError) Rejected() bool { return e.Err == nil }

// ValidationError carries per-field messages from the loose step validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// Add records a field problem and returns the receiver for chaining.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
	return e
}

// OrNil returns nil when no field problems were recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
