package gemini

import "fmt"

// ErrorClass partitions call failures into the two behaviors the
// candidate iterator needs: advance to the next candidate, or stop.
type ErrorClass string

const (
	// ClassModelNotFound means this (model, api version) pair does not
	// exist or is not served; the next candidate may still work.
	ClassModelNotFound ErrorClass = "model_not_found"
	// ClassTerminal covers everything else: auth, quota, transport,
	// malformed responses. Advancing would not help.
	ClassTerminal ErrorClass = "terminal"
)

// CallError is a classified failure from one candidate attempt.
type CallError struct {
	Model      string
	APIVersion string
	Status     int
	Class      ErrorClass
	Err        error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s/%s (%s, status %d): %v", e.APIVersion, e.Model, e.Class, e.Status, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the iterator should advance to the next
// candidate after this error.
func (e *CallError) Retryable() bool {
	return e.Class == ClassModelNotFound
}

func newCallError(model, apiVersion string, status int, class ErrorClass, err error) *CallError {
	return &CallError{Model: model, APIVersion: apiVersion, Status: status, Class: class, Err: err}
}
