// Package pipeline composes registered tasks into dependency-ordered runs.
// A Config names the tasks to run (with per-task input mappings and
// settings); the Executor expands them to their transitive dependency
// closure, orders them topologically, and runs them strictly one at a time.
// Each task's outputs merge forward into the available outputs the next
// task's inputs are built from, and the whole run is captured in a Result
// that can be persisted and replayed later.
//
// Input mappings use Value: Lit(v) passes a literal, Ref("key") resolves to
// whatever the most recent earlier task (or the initial inputs) produced
// under that key. On top of configured mappings, the executor copies in
// every available entry matching one of the task's declared input kinds,
// then every remaining data entry that does not collide with an already-set
// key. That is why a producer and a consumer agreeing on a kind name need
// no explicit wiring at all:
//
//	cfg := pipeline.Config{
//		Name: "report",
//		Tasks: []pipeline.TaskConfig{
//			{TaskID: "analyze"},
//			{TaskID: "report", Settings: map[string]interface{}{"format": "json"}},
//		},
//	}
//	exec, err := pipeline.NewExecutor(reg, &pipeline.Options{BaseDir: dir, Store: store})
//	...
//	res, err := exec.Execute(ctx, cfg, map[string]interface{}{"document": path}, nil)
//
// A failing task stops the run: earlier executions stay recorded, the task's
// error lands in its TaskExecution, and the Result reports status failed
// with an ErrorMessage naming the task. The executor never retries and
// never rolls back completed work; wrap individual tasks with the retry
// package when transient failures are expected.
//
// # Run directories
//
// Every run owns <BaseDir>/pipeline_<id>/. Output files a task reports are
// copied into a task_<taskID>/ subdirectory in there and the carrier paths
// are rewritten to the copies, so downstream tasks and later replays read
// the run's own files no matter what the task does with its scratch space
// afterwards. Configure the result store on the same directory and the
// record lands next to the files it describes.
//
// An Observer can watch a run (pipeline and task start/finish) for progress
// tracking; finished runs are read back through the store, not through
// hooks.
package pipeline
