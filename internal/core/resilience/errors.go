package resilience

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when an attempt does not finish before its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrPoolClosed is returned when work is submitted after Shutdown.
	ErrPoolClosed = errors.New("worker pool closed")

	// ErrTaskPanic is wrapped by the error Run returns when a task panics.
	ErrTaskPanic = errors.New("task panicked")
)

// TransientError marks a store failure as likely temporary and eligible for retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError. Returns nil if err is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err was marked transient.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// FatalError is the terminal, non-retryable failure handed to callers.
type FatalError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err is, or wraps, a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// ExhaustedError is produced by Execute when a retry sequence stops without success.
// Retryable is true when the attempt budget ran out on a retryable error, false when
// a non-retryable error ended the sequence early.
type ExhaustedError struct {
	Attempts  int
	Retryable bool
	Err       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }
