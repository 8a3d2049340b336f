package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is a sentinel error for "not found" cases
var ErrNotFound = errors.New("not found")

// ErrInvalidModel is returned when a message, command or prompt model is missing required fields
var ErrInvalidModel = errors.New("invalid model")

// ErrWorkflowInvalid is returned when a workflow definition cannot be executed or exported
var ErrWorkflowInvalid = errors.New("invalid workflow")

// ErrDuplicate is returned when registering a name that is already taken
var ErrDuplicate = errors.New("already registered")

// ErrRunInProgress is returned when another local run holds the run lock
var ErrRunInProgress = errors.New("another workflow run is in progress")

// ValidationError lists the fields that failed validation on a model
type ValidationError struct {
	Model  string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: invalid fields [%s]", ErrInvalidModel, e.Model, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidModel
}

// SlackAPIError wraps a failed Slack Web API call
type SlackAPIError struct {
	Method string
	Err    error
}

func (e *SlackAPIError) Error() string {
	return fmt.Sprintf("slack %s failed: %v", e.Method, e.Err)
}

func (e *SlackAPIError) Unwrap() error {
	return e.Err
}

// IsSlackAPIError checks if an error is a SlackAPIError and returns it
func IsSlackAPIError(err error) (*SlackAPIError, bool) {
	var slackErr *SlackAPIError
	if errors.As(err, &slackErr) {
		return slackErr, true
	}
	return nil, false
}

// StepFailedError is returned by the local runner when a step exhausts its retries
type StepFailedError struct {
	Step     string
	Attempts int
	Output   string
	Err      error
}

func (e *StepFailedError) Error() string {
	return fmt.Sprintf("step %q failed after %d attempt(s): %v", e.Step, e.Attempts, e.Err)
}

func (e *StepFailedError) Unwrap() error {
	return e.Err
}

// IsStepFailedError checks if an error is a StepFailedError and returns it
func IsStepFailedError(err error) (*StepFailedError, bool) {
	var stepErr *StepFailedError
	if errors.As(err, &stepErr) {
		return stepErr, true
	}
	return nil, false
}

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}
