package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pipewright/pipewright/task"
)

// countingTask fails with err until failures attempts have happened, then
// succeeds with a fixed output.
type countingTask struct {
	meta     task.Metadata
	failures int
	err      error
	attempts int
}

func (c *countingTask) Metadata() task.Metadata { return c.meta }

func (c *countingTask) Execute(ctx context.Context, in task.Inputs) (task.Outputs, error) {
	c.attempts++
	if c.attempts <= c.failures {
		return task.Outputs{}, c.err
	}
	out := task.NewOutputs()
	out.AddData("attempts", c.attempts)
	return out, nil
}

func fastPolicy() Policy {
	return Policy{MaxRetries: 5, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

// --- Transient marking ---

func TestTransient(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
	base := errors.New("connection reset")
	marked := Transient(base)
	if !IsTransient(marked) {
		t.Error("marked error should be transient")
	}
	if IsTransient(base) {
		t.Error("plain error should not be transient")
	}
	if !errors.Is(marked, base) {
		t.Error("marking must not hide the cause from errors.Is")
	}
	if marked.Error() != "connection reset" {
		t.Errorf("message: got %q", marked.Error())
	}

	wrapped := Transient(errors.New("inner"))
	outer := errors.Join(errors.New("outer"), wrapped)
	if !IsTransient(outer) {
		t.Error("transient mark should be found anywhere in the chain")
	}
}

// --- Wrap ---

func TestWrap_RetriesTransientErrors(t *testing.T) {
	ctx := context.Background()
	inner := &countingTask{
		meta:     task.Metadata{TaskID: "flaky"},
		failures: 2,
		err:      Transient(errors.New("socket closed")),
	}
	wrapped := Wrap(inner, fastPolicy())

	out, err := wrapped.Execute(ctx, task.NewInputs())
	if err != nil {
		t.Fatal(err)
	}
	if inner.attempts != 3 {
		t.Errorf("attempts: got %d, want 3", inner.attempts)
	}
	if out.Data["attempts"] != 3 {
		t.Errorf("output: got %v", out.Data)
	}
}

func TestWrap_PermanentErrorFailsImmediately(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("malformed document")
	inner := &countingTask{meta: task.Metadata{TaskID: "broken"}, failures: 10, err: cause}
	wrapped := Wrap(inner, fastPolicy())

	_, err := wrapped.Execute(ctx, task.NewInputs())
	if !errors.Is(err, cause) {
		t.Fatalf("got %v, want the original error", err)
	}
	if inner.attempts != 1 {
		t.Errorf("attempts: got %d, want 1", inner.attempts)
	}
}

func TestWrap_ShouldRetryOverride(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("busy")
	inner := &countingTask{meta: task.Metadata{TaskID: "busy"}, failures: 1, err: cause}
	p := fastPolicy()
	p.ShouldRetry = func(err error) bool { return errors.Is(err, cause) }
	wrapped := Wrap(inner, p)

	if _, err := wrapped.Execute(ctx, task.NewInputs()); err != nil {
		t.Fatal(err)
	}
	if inner.attempts != 2 {
		t.Errorf("attempts: got %d, want 2", inner.attempts)
	}
}

func TestWrap_MaxRetriesExhausted(t *testing.T) {
	ctx := context.Background()
	inner := &countingTask{
		meta:     task.Metadata{TaskID: "hopeless"},
		failures: 100,
		err:      Transient(errors.New("still down")),
	}
	p := fastPolicy()
	p.MaxRetries = 2
	wrapped := Wrap(inner, p)

	_, err := wrapped.Execute(ctx, task.NewInputs())
	if err == nil {
		t.Fatal("expected the final error after retries run out")
	}
	if !IsTransient(err) {
		t.Errorf("final error should be the task's own, got %v", err)
	}
	if inner.attempts != 3 {
		t.Errorf("attempts: got %d, want 3 (first try plus two retries)", inner.attempts)
	}
}

// --- Capability forwarding ---

type capTask struct {
	countingTask
	validated bool
	setupRun  bool
	cleaned   bool
}

func (c *capTask) ValidateInputs(in task.Inputs) bool { c.validated = true; return true }
func (c *capTask) Setup(ctx context.Context) error    { c.setupRun = true; return nil }
func (c *capTask) Cleanup(ctx context.Context) error  { c.cleaned = true; return nil }

func TestWrap_ForwardsCapabilities(t *testing.T) {
	ctx := context.Background()
	inner := &capTask{countingTask: countingTask{meta: task.Metadata{TaskID: "full"}}}
	wrapped := Wrap(inner, fastPolicy())

	if wrapped.Metadata().TaskID != "full" {
		t.Errorf("metadata: got %+v", wrapped.Metadata())
	}
	if !wrapped.(task.Validator).ValidateInputs(task.NewInputs()) || !inner.validated {
		t.Error("ValidateInputs should reach the inner task")
	}
	if err := wrapped.(task.SetupTask).Setup(ctx); err != nil || !inner.setupRun {
		t.Error("Setup should reach the inner task")
	}
	if err := wrapped.(task.CleanupTask).Cleanup(ctx); err != nil || !inner.cleaned {
		t.Error("Cleanup should reach the inner task")
	}
}

func TestWrap_SuppliesEngineDefaults(t *testing.T) {
	ctx := context.Background()
	inner := &countingTask{meta: task.Metadata{TaskID: "bare", InputKinds: []task.Kind{"text"}}}
	wrapped := Wrap(inner, fastPolicy())

	// The inner task has no Validator; the wrapper must apply the same
	// default the executor would.
	if wrapped.(task.Validator).ValidateInputs(task.NewInputs()) {
		t.Error("empty inputs should fail default validation for a task wanting text")
	}
	in := task.NewInputs()
	in.SetData("text", "hello")
	if !wrapped.(task.Validator).ValidateInputs(in) {
		t.Error("inputs carrying the declared kind should pass")
	}
	if err := wrapped.(task.SetupTask).Setup(ctx); err != nil {
		t.Errorf("default Setup: %v", err)
	}
	if err := wrapped.(task.CleanupTask).Cleanup(ctx); err != nil {
		t.Errorf("default Cleanup: %v", err)
	}
}

// --- WithTimeout ---

type blockingTask struct {
	meta task.Metadata
}

func (b *blockingTask) Metadata() task.Metadata { return b.meta }

func (b *blockingTask) Execute(ctx context.Context, in task.Inputs) (task.Outputs, error) {
	select {
	case <-ctx.Done():
		return task.Outputs{}, ctx.Err()
	case <-time.After(5 * time.Second):
		return task.NewOutputs(), nil
	}
}

func TestWithTimeout(t *testing.T) {
	ctx := context.Background()
	wrapped := WithTimeout(&blockingTask{meta: task.Metadata{TaskID: "slow"}}, 10*time.Millisecond)

	start := time.Now()
	_, err := wrapped.Execute(ctx, task.NewInputs())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("the deadline should have fired long before the task finished")
	}
}

func TestWithTimeout_FastTaskUnaffected(t *testing.T) {
	ctx := context.Background()
	inner := &countingTask{meta: task.Metadata{TaskID: "quick"}}
	wrapped := WithTimeout(inner, time.Second)

	out, err := wrapped.Execute(ctx, task.NewInputs())
	if err != nil {
		t.Fatal(err)
	}
	if out.Data["attempts"] != 1 {
		t.Errorf("output: got %v", out.Data)
	}
}
