package texttasks

import "github.com/pipewright/pipewright/task"

// Kinds produced and consumed by the built-in text tasks.
const (
	KindDocument task.Kind = "document"
	KindText     task.Kind = "text"
	KindStats    task.Kind = "stats"
	KindSummary  task.Kind = "summary"
	KindReport   task.Kind = "report"
)
