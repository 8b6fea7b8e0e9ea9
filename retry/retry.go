package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pipewright/pipewright/task"
)

// transientErr marks an error as worth retrying.
type transientErr struct{ err error }

func (e *transientErr) Error() string { return e.err.Error() }
func (e *transientErr) Unwrap() error { return e.err }

// Transient marks err as transient. With the default policy only transient
// errors are retried, so tasks decide at the failure site whether an error
// is worth another attempt (a timeout is, a malformed document is not).
// Transient(nil) is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientErr{err: err}
}

// IsTransient reports whether err is marked transient anywhere in its chain.
func IsTransient(err error) bool { return errors.As(err, new(*transientErr)) }

// Policy configures Wrap. The zero value retries transient errors with the
// exponential backoff defaults and no retry cap.
type Policy struct {
	// MaxRetries caps retries after the first attempt; 0 means no cap, so
	// attempts continue until the backoff gives up or the context ends.
	MaxRetries uint64

	// InitialInterval, Multiplier and MaxInterval shape the exponential
	// backoff; zero values keep the backoff package's defaults.
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration

	// ShouldRetry decides which errors are retried. Nil retries only errors
	// marked with Transient.
	ShouldRetry func(error) bool
}

// Wrap returns a task that runs t.Execute under p, re-invoking it with
// exponential backoff while it returns retryable errors. Only Execute is
// retried: Metadata, ValidateInputs, Setup and Cleanup pass straight
// through to t, with the engine's defaults substituted when t lacks the
// optional interface, so wrapping never changes how a task is scheduled or
// validated. Setup is therefore not re-run between attempts; a task whose
// Execute depends on fresh per-attempt state should rebuild it inside
// Execute.
func Wrap(t task.Task, p Policy) task.Task {
	return &retryTask{capabilities: capabilities{inner: t}, policy: p}
}

type retryTask struct {
	capabilities
	policy Policy
}

func (r *retryTask) Metadata() task.Metadata { return r.inner.Metadata() }

func (r *retryTask) Execute(ctx context.Context, in task.Inputs) (task.Outputs, error) {
	shouldRetry := r.policy.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var out task.Outputs
	operation := func() error {
		var err error
		out, err = r.inner.Execute(ctx, in)
		if err != nil && !shouldRetry(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(operation, backoff.WithContext(r.newBackOff(), ctx)); err != nil {
		return task.Outputs{}, err
	}
	return out, nil
}

func (r *retryTask) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		b.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.Multiplier > 0 {
		b.Multiplier = r.policy.Multiplier
	}
	if r.policy.MaxInterval > 0 {
		b.MaxInterval = r.policy.MaxInterval
	}
	if r.policy.MaxRetries > 0 {
		return backoff.WithMaxRetries(b, r.policy.MaxRetries)
	}
	return b
}

// WithTimeout wraps t so each Execute call runs with a deadline of
// now+timeout. The engine imposes no deadlines of its own; combine with
// Wrap (timeout inside, retry outside) to give every attempt its own
// deadline:
//
//	retry.Wrap(retry.WithTimeout(t, 30*time.Second), policy)
func WithTimeout(t task.Task, timeout time.Duration) task.Task {
	return &timeoutTask{capabilities: capabilities{inner: t}, timeout: timeout}
}

type timeoutTask struct {
	capabilities
	timeout time.Duration
}

func (t *timeoutTask) Metadata() task.Metadata { return t.inner.Metadata() }

func (t *timeoutTask) Execute(ctx context.Context, in task.Inputs) (task.Outputs, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Execute(ctx, in)
}

// capabilities forwards the optional task interfaces to inner, substituting
// the engine's defaults when inner does not implement one.
type capabilities struct {
	inner task.Task
}

func (c capabilities) ValidateInputs(in task.Inputs) bool {
	if v, ok := c.inner.(task.Validator); ok {
		return v.ValidateInputs(in)
	}
	return task.DefaultValidate(c.inner.Metadata(), in)
}

func (c capabilities) Setup(ctx context.Context) error {
	if s, ok := c.inner.(task.SetupTask); ok {
		return s.Setup(ctx)
	}
	return nil
}

func (c capabilities) Cleanup(ctx context.Context) error {
	if cl, ok := c.inner.(task.CleanupTask); ok {
		return cl.Cleanup(ctx)
	}
	return nil
}
