package chat

import "fmt"

// NetworkError indicates the backend was unreachable or answered with
// an unexpected status.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: backend unreachable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError indicates the request was rejected because its
// content failed the length or emptiness constraint.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// NotFoundError indicates an operation referenced an unknown chat id.
type NotFoundError struct {
	Op     string
	ChatID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: chat %q not found", e.Op, e.ChatID)
}
