package pipeline

import "context"

// Observer receives lifecycle notifications during a run: the pipeline
// starting and finishing, and each task starting and finishing. Hooks are
// notification-only and must treat their arguments as read-only; they cannot
// alter the run. Use an Observer for progress tracking ("which task is this
// pipeline on right now") or custom metrics. Completed runs are read back
// through storage, not through hooks.
type Observer interface {
	PipelineStarted(ctx context.Context, res *Result)
	TaskStarted(ctx context.Context, pipelineID, taskID string)
	TaskFinished(ctx context.Context, pipelineID string, exec *TaskExecution)
	PipelineFinished(ctx context.Context, res *Result)
}

// MultiObserver fans each notification out to every observer in order.
func MultiObserver(observers ...Observer) Observer {
	return multiObserver(observers)
}

type multiObserver []Observer

func (m multiObserver) PipelineStarted(ctx context.Context, res *Result) {
	for _, o := range m {
		o.PipelineStarted(ctx, res)
	}
}

func (m multiObserver) TaskStarted(ctx context.Context, pipelineID, taskID string) {
	for _, o := range m {
		o.TaskStarted(ctx, pipelineID, taskID)
	}
}

func (m multiObserver) TaskFinished(ctx context.Context, pipelineID string, exec *TaskExecution) {
	for _, o := range m {
		o.TaskFinished(ctx, pipelineID, exec)
	}
}

func (m multiObserver) PipelineFinished(ctx context.Context, res *Result) {
	for _, o := range m {
		o.PipelineFinished(ctx, res)
	}
}
