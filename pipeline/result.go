package pipeline

import (
	"time"

	"github.com/pipewright/pipewright/task"
)

// TaskExecution records one task's run within a pipeline: timing, the
// resolved inputs it was given, its outputs on success, and the error
// message on failure. The executor finalizes each entry exactly once; a
// terminal execution is never mutated again.
type TaskExecution struct {
	TaskID       string       `json:"task_id" yaml:"task_id"`
	Status       task.Status  `json:"status" yaml:"status"`
	StartTime    time.Time    `json:"start_time" yaml:"start_time"`
	EndTime      time.Time    `json:"end_time" yaml:"end_time"`
	Inputs       task.Inputs  `json:"inputs" yaml:"inputs"`
	Outputs      task.Outputs `json:"outputs" yaml:"outputs"`
	ErrorMessage string       `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// Duration returns how long the execution took; zero until it has finished.
func (e *TaskExecution) Duration() time.Duration {
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

// Result is the complete, replayable record of one pipeline run: the config
// snapshot it ran with, per-task executions, and the accumulated final
// outputs when the run completed.
type Result struct {
	PipelineID string      `json:"pipeline_id" yaml:"pipeline_id"`
	Config     Config      `json:"config" yaml:"config"`
	Status     task.Status `json:"status" yaml:"status"`
	StartTime  time.Time   `json:"start_time" yaml:"start_time"`
	EndTime    time.Time   `json:"end_time" yaml:"end_time"`

	// Executions holds one entry per resolved task, in execution order. A
	// failed run keeps every execution up to and including the failing one;
	// tasks never reached have no entry.
	Executions []*TaskExecution `json:"task_executions" yaml:"task_executions"`

	// FinalOutputs is the accumulated carrier; set only on completed runs.
	FinalOutputs task.Outputs `json:"final_outputs" yaml:"final_outputs"`

	// ErrorMessage is set only on failed runs and names the failing task.
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// Execution returns the recorded execution for id, or nil if the task never
// ran in this pipeline.
func (r *Result) Execution(id string) *TaskExecution {
	for _, e := range r.Executions {
		if e.TaskID == id {
			return e
		}
	}
	return nil
}

// Duration returns how long the run took; zero until it has finished.
func (r *Result) Duration() time.Duration {
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
