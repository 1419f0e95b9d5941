package resilience

import (
	"context"
	"errors"
	"time"
)

// Predicate reports whether an error is worth another attempt.
type Predicate func(error) bool

// DefaultRetryable retries timeouts and errors marked transient.
func DefaultRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || IsTransient(err)
}

// OutcomeKind classifies a single attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRetryable
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of one attempt.
type Outcome[T any] struct {
	Kind  OutcomeKind
	Value T
	Err   error
}

// Classify turns an attempt result into an Outcome.
func Classify[T any](v T, err error, retryable Predicate) Outcome[T] {
	switch {
	case err == nil:
		return Outcome[T]{Kind: OutcomeSuccess, Value: v}
	case retryable(err):
		return Outcome[T]{Kind: OutcomeRetryable, Err: err}
	default:
		return Outcome[T]{Kind: OutcomeFatal, Err: err}
	}
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Policy retries tasks on a Runner with a fixed delay between attempts.
type Policy struct {
	runner *Runner
	cfg    Config
	hooks  *Hooks
	wait   WaitFunc
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithHooks sets lifecycle callbacks.
func WithHooks(h *Hooks) PolicyOption {
	return func(p *Policy) { p.hooks = h }
}

// WithWait replaces the inter-attempt wait.
func WithWait(fn WaitFunc) PolicyOption {
	return func(p *Policy) { p.wait = fn }
}

// NewPolicy creates a retry policy. cfg is expected to be validated already.
func NewPolicy(runner *Runner, cfg Config, opts ...PolicyOption) *Policy {
	p := &Policy{
		runner: runner,
		cfg:    cfg,
		wait:   sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the policy configuration.
func (p *Policy) Config() Config { return p.cfg }

// Execute runs task until it succeeds, fails with an error retryable rejects, or
// MaxAttempts is spent. Attempts are strictly sequential. Failures come back as
// *ExhaustedError carrying the last observed error; cancellation of ctx and
// ErrPoolClosed are returned as they are.
func Execute[T any](ctx context.Context, p *Policy, op string, task Task[T], retryable Predicate) (T, error) {
	var zero T
	if retryable == nil {
		retryable = DefaultRetryable
	}

	maxAttempts := max(p.cfg.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		p.hooks.emitAttempt(op, attempt)

		v, err := Run(ctx, p.runner, p.cfg.Timeout, task)
		if errors.Is(err, ErrTimeout) {
			p.hooks.emitTimeout(op, attempt)
		}
		if err != nil && (errors.Is(err, ErrPoolClosed) || ctx.Err() != nil) {
			return zero, err
		}

		out := Classify(v, err, retryable)
		switch out.Kind {
		case OutcomeSuccess:
			p.hooks.emitSuccess(op, attempt)
			return out.Value, nil
		case OutcomeFatal:
			return zero, &ExhaustedError{Attempts: attempt, Err: out.Err}
		}

		if attempt >= maxAttempts {
			p.hooks.emitExhausted(op, attempt, out.Err)
			return zero, &ExhaustedError{Attempts: attempt, Retryable: true, Err: out.Err}
		}

		p.hooks.emitRetry(op, attempt, out.Err)
		if err := p.wait(ctx, p.cfg.Delay); err != nil {
			return zero, err
		}
	}
}
