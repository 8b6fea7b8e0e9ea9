package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pipewright/pipewright/task"
)

// ErrInvalidInputs is wrapped into a task's failure when its resolved inputs
// fail validation; the task does not run and the pipeline fails.
var ErrInvalidInputs = errors.New("invalid inputs")

// TaskError is the failure of a single task within a run. Its message is
// what the Result carries in ErrorMessage; Unwrap exposes the cause.
type TaskError struct {
	TaskID string
	Err    error
}

func (e *TaskError) Error() string { return fmt.Sprintf("task %q failed: %v", e.TaskID, e.Err) }
func (e *TaskError) Unwrap() error { return e.Err }

// ResultStore persists finished pipeline results. storage.Store implements
// it; the executor needs only Save.
type ResultStore interface {
	Save(ctx context.Context, res *Result) error
}

// Options configures an Executor.
type Options struct {
	// BaseDir is where per-run directories are created, "pipelines" by
	// default. Point the Executor and the result store at the same
	// directory to keep a run's files and its record together.
	BaseDir string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Store, when set, persists every finished Result.
	Store ResultStore

	// Observer, when set, receives lifecycle notifications for every run.
	Observer Observer
}

// RunOptions are per-run options for Execute.
type RunOptions struct {
	// PipelineID overrides the generated run id, e.g. when the caller
	// pre-allocates ids. Empty means a fresh UUID.
	PipelineID string
}

// Executor runs pipelines. Within a run, tasks execute strictly one at a
// time in dependency-resolved order. An Executor is safe for concurrent
// use: simultaneous runs are independent, each owning its result, carrier,
// and run directory.
type Executor struct {
	registry *task.Registry
	baseDir  string
	logger   *slog.Logger
	store    ResultStore
	observer Observer

	now   func() time.Time // test seam
	newID func() string    // test seam
}

// NewExecutor returns an Executor writing run output under opts.BaseDir,
// creating the directory immediately.
func NewExecutor(reg *task.Registry, opts *Options) (*Executor, error) {
	if reg == nil {
		return nil, fmt.Errorf("executor: nil registry")
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.BaseDir == "" {
		o.BaseDir = "pipelines"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if err := os.MkdirAll(o.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("executor: create base dir: %w", err)
	}
	return &Executor{
		registry: reg,
		baseDir:  o.BaseDir,
		logger:   o.Logger,
		store:    o.Store,
		observer: o.Observer,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}, nil
}

// BaseDir returns the directory run directories are created under.
func (e *Executor) BaseDir() string { return e.baseDir }

// Execute runs cfg to completion and returns the run's Result. A task
// failure does not surface as the returned error: the run stops at the
// failing task, the Result carries status failed, the failing execution,
// and an ErrorMessage naming the task, and the error is nil. The returned
// error is reserved for problems before the run starts (unknown task ids,
// dependency cycles, unusable run directory), when no Result exists, and
// for a failed Store.Save, which is returned alongside the finished Result.
//
// Initial inputs seed the run's available outputs: a string value naming an
// existing path is treated as a file, everything else as data.
func (e *Executor) Execute(ctx context.Context, cfg Config, initial map[string]interface{}, opts *RunOptions) (*Result, error) {
	order, err := e.registry.ResolveDependencies(cfg.TaskIDs())
	if err != nil {
		return nil, fmt.Errorf("resolve pipeline %q: %w", cfg.Name, err)
	}

	var id string
	if opts != nil {
		id = opts.PipelineID
	}
	if id == "" {
		id = e.newID()
	}
	runDir := filepath.Join(e.baseDir, "pipeline_"+id)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	res := &Result{
		PipelineID: id,
		Config:     cfg,
		Status:     task.StatusRunning,
		StartTime:  e.now(),
	}
	e.logger.Info("starting pipeline", "pipeline_id", id, "name", cfg.Name, "order", order)
	if e.observer != nil {
		e.observer.PipelineStarted(ctx, res)
	}

	avail := task.NewOutputs()
	for key, value := range initial {
		if s, ok := value.(string); ok && pathExists(s) {
			avail.AddFile(key, s)
		} else {
			avail.AddData(key, value)
		}
	}

	for _, taskID := range order {
		if e.observer != nil {
			e.observer.TaskStarted(ctx, id, taskID)
		}
		exec := e.runTask(ctx, cfg.taskConfig(taskID), avail, runDir)
		res.Executions = append(res.Executions, exec)
		if e.observer != nil {
			e.observer.TaskFinished(ctx, id, exec)
		}
		if exec.Status == task.StatusFailed {
			res.Status = task.StatusFailed
			res.ErrorMessage = (&TaskError{TaskID: taskID, Err: errors.New(exec.ErrorMessage)}).Error()
			break
		}
		avail.Merge(exec.Outputs)
	}

	if res.Status != task.StatusFailed {
		res.Status = task.StatusCompleted
		res.FinalOutputs = avail
	}
	res.EndTime = e.now()

	e.logger.Info("pipeline finished",
		"pipeline_id", id, "status", res.Status, "duration", res.Duration())
	if e.observer != nil {
		e.observer.PipelineFinished(ctx, res)
	}

	if e.store != nil {
		if err := e.store.Save(ctx, res); err != nil {
			return res, fmt.Errorf("save pipeline %q: %w", id, err)
		}
	}
	return res, nil
}

// ExecuteSequence runs ids in order as an ad-hoc pipeline with empty task
// configs and returns the final data outputs. Unlike Execute it reports a
// task failure as an error (a *TaskError naming the failing task).
func (e *Executor) ExecuteSequence(ctx context.Context, ids []string, initial map[string]interface{}) (map[string]interface{}, error) {
	cfg := Config{
		Name:        "sequential_execution",
		Description: "Sequential execution of: " + strings.Join(ids, ", "),
		Tasks:       make([]TaskConfig, len(ids)),
	}
	for i, id := range ids {
		cfg.Tasks[i] = TaskConfig{TaskID: id}
	}
	res, err := e.Execute(ctx, cfg, initial, nil)
	if err != nil {
		return nil, err
	}
	if res.Status == task.StatusFailed {
		for _, exec := range res.Executions {
			if exec.Status == task.StatusFailed {
				return nil, &TaskError{TaskID: exec.TaskID, Err: errors.New(exec.ErrorMessage)}
			}
		}
		return nil, errors.New(res.ErrorMessage)
	}
	return res.FinalOutputs.Data, nil
}

// runTask executes one task and returns its finalized TaskExecution. All
// failures are recorded in the execution, never returned.
func (e *Executor) runTask(ctx context.Context, cfg TaskConfig, avail task.Outputs, runDir string) *TaskExecution {
	exec := &TaskExecution{
		TaskID:    cfg.TaskID,
		Status:    task.StatusRunning,
		StartTime: e.now(),
	}
	if err := e.tryTask(ctx, cfg, avail, runDir, exec); err != nil {
		e.logger.Error("task failed", "task_id", cfg.TaskID, "error", err)
		exec.Status = task.StatusFailed
		exec.ErrorMessage = err.Error()
	}
	exec.EndTime = e.now()
	return exec
}

// tryTask instantiates the task, builds and validates its inputs, runs
// Setup/Execute, and collects output files. Once Setup has succeeded,
// Cleanup always runs after Execute, after the output files were collected,
// success or failure; a Setup error skips both Execute and Cleanup.
func (e *Executor) tryTask(ctx context.Context, cfg TaskConfig, avail task.Outputs, runDir string, exec *TaskExecution) error {
	e.logger.Info("executing task", "task_id", cfg.TaskID)

	t, err := e.registry.New(cfg.TaskID)
	if err != nil {
		return err
	}
	meta := t.Metadata()

	in := e.buildInputs(cfg, meta, avail)
	exec.Inputs = in

	var valid bool
	if v, ok := t.(task.Validator); ok {
		valid = v.ValidateInputs(in)
	} else {
		valid = task.DefaultValidate(meta, in)
	}
	if !valid {
		return fmt.Errorf("%w for task %q", ErrInvalidInputs, cfg.TaskID)
	}

	if s, ok := t.(task.SetupTask); ok {
		if err := s.Setup(ctx); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}

	out, execErr := t.Execute(ctx, in)
	if execErr == nil {
		execErr = e.collectOutputs(cfg.TaskID, &out, runDir)
	}
	if c, ok := t.(task.CleanupTask); ok {
		if cerr := c.Cleanup(ctx); cerr != nil {
			e.logger.Warn("task cleanup failed", "task_id", cfg.TaskID, "error", cerr)
		}
	}
	if execErr != nil {
		return execErr
	}

	exec.Outputs = out
	exec.Status = task.StatusCompleted
	e.logger.Info("task completed", "task_id", cfg.TaskID)
	return nil
}

// buildInputs assembles a task's inputs from its configuration and the
// outputs produced so far. Configured references resolve data entries
// first, then files; an unproduced key is omitted. Every available entry
// whose key equals a declared input kind is copied in next (it may replace
// a configured entry of the same name). Finally every remaining available
// data entry not already set is copied, so tasks can read pipeline-wide
// parameters without declaring them. Accumulated metadata never flows in.
func (e *Executor) buildInputs(cfg TaskConfig, meta task.Metadata, avail task.Outputs) task.Inputs {
	in := task.NewInputs()

	for key, value := range cfg.Inputs {
		if refKey, ok := value.IsRef(); ok {
			if v, present := avail.GetData(refKey); present {
				in.SetData(key, v)
			} else if p, present := avail.GetFile(refKey); present {
				in.SetFile(key, p)
			}
			continue
		}
		in.SetData(key, value.Literal())
	}

	for _, kind := range meta.InputKinds {
		key := string(kind)
		if v, ok := avail.GetData(key); ok {
			in.SetData(key, v)
		}
		if p, ok := avail.GetFile(key); ok {
			in.SetFile(key, p)
		}
	}

	for key, value := range avail.Data {
		if _, ok := in.Data[key]; !ok {
			in.SetData(key, value)
		}
	}
	return in
}

// collectOutputs copies the task's output files into task_<id>/ inside the
// run directory and rewrites the carrier paths to the copies. The source is
// copied, never moved. Paths that no longer exist are skipped; a file
// already at its destination is left alone.
func (e *Executor) collectOutputs(taskID string, out *task.Outputs, runDir string) error {
	if len(out.Files) == 0 {
		return nil
	}
	taskDir := filepath.Join(runDir, "task_"+taskID)
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		return fmt.Errorf("create task dir: %w", err)
	}
	for key, src := range out.Files {
		if !pathExists(src) {
			continue
		}
		dst := filepath.Join(taskDir, filepath.Base(src))
		same, err := samePath(src, dst)
		if err != nil {
			return fmt.Errorf("collect output %q: %w", key, err)
		}
		if same {
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("collect output %q: %w", key, err)
		}
		out.Files[key] = dst
	}
	return nil
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

// copyFile copies src to dst preserving the source's permission bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	s, err := os.Open(src)
	if err != nil {
		return err
	}
	defer s.Close()
	d, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(d, s); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}
