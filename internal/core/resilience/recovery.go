package resilience

import (
	"context"
	"errors"
	"log/slog"
)

// RecoveryHandler converts an exhausted retry sequence into a FatalError. It is the
// only place a terminal failure is logged at error level.
type RecoveryHandler struct {
	log *slog.Logger
}

// NewRecoveryHandler creates a handler. A nil logger uses slog.Default().
func NewRecoveryHandler(log *slog.Logger) *RecoveryHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RecoveryHandler{log: log}
}

// Recover records the failure of op and returns a FatalError wrapping lastErr.
// input is the value the operation was invoked with, logged for context.
func (h *RecoveryHandler) Recover(op string, attempts int, lastErr error, input any) error {
	h.log.Error("Operation failed after retries",
		"op", op,
		"attempts", attempts,
		"input", input,
		"error", lastErr,
	)
	return &FatalError{Op: op, Attempts: attempts, Err: lastErr}
}

// Do runs task through the policy and hands a spent retry budget to the recovery
// handler exactly once. A non-retryable failure is wrapped as FatalError without
// going through recovery, so callers can still match the cause with errors.Is.
func Do[T any](
	ctx context.Context,
	p *Policy,
	h *RecoveryHandler,
	op string,
	input any,
	task Task[T],
	retryable Predicate,
) (T, error) {
	var zero T

	v, err := Execute(ctx, p, op, task, retryable)
	if err == nil {
		return v, nil
	}

	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		return zero, err
	}
	if ex.Retryable {
		return zero, h.Recover(op, ex.Attempts, ex.Err, input)
	}
	return zero, &FatalError{Op: op, Attempts: ex.Attempts, Err: ex.Err}
}
