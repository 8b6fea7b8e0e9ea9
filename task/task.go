package task

import "context"

// Task is a typed unit of work. Metadata is static (identity, declared kinds,
// dependencies); Execute does the work with the inputs the executor built.
// The engine creates a fresh instance per scheduled use, so implementations
// must not rely on state surviving between invocations.
type Task interface {
	Metadata() Metadata
	Execute(ctx context.Context, in Inputs) (Outputs, error)
}

// Factory creates a fresh Task. Register factories, not instances; the
// registry invokes the factory once to capture metadata and again for every
// execution.
type Factory func() Task

// Validator is implemented by tasks that want custom input validation. The
// executor calls ValidateInputs after building the task's inputs and before
// Execute; returning false fails the task (and the pipeline) without running
// it. Tasks that do not implement Validator get DefaultValidate.
type Validator interface {
	ValidateInputs(in Inputs) bool
}

// SetupTask is implemented by tasks that acquire resources before Execute
// (scratch directories, connections). A Setup error fails the task without
// running Execute, and Cleanup is not called.
type SetupTask interface {
	Setup(ctx context.Context) error
}

// CleanupTask is implemented by tasks that release resources. Once Setup has
// succeeded, Cleanup always runs, whether Execute succeeded or failed, and
// after the executor has collected the task's output files. Cleanup errors
// are logged and never change the task outcome.
type CleanupTask interface {
	Cleanup(ctx context.Context) error
}

// DefaultValidate is the validation applied when a task does not implement
// Validator: at least one declared input kind must be present as a data or
// files key. A task declaring no input kinds is always valid.
func DefaultValidate(meta Metadata, in Inputs) bool {
	if len(meta.InputKinds) == 0 {
		return true
	}
	for _, kind := range meta.InputKinds {
		key := string(kind)
		if _, ok := in.Data[key]; ok {
			return true
		}
		if _, ok := in.Files[key]; ok {
			return true
		}
	}
	return false
}
