package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pipewright/pipewright/pipeline"
	"github.com/pipewright/pipewright/task"
)

// ErrNotFound is returned by Load for an unknown pipeline id.
var ErrNotFound = errors.New("pipeline not found")

const (
	resultFile = "result.json"
	indexFile  = "pipeline_index.json"
)

// Options configures a Store.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Store persists pipeline results as JSON under a base directory: each run
// in <base>/pipeline_<id>/result.json, with a summary row per run in
// <base>/pipeline_index.json. Point it at the executor's BaseDir so a run's
// record lands next to its collected files.
//
// A Store is safe for concurrent use. Save and Delete for the same pipeline
// id are serialized; distinct ids proceed independently, sharing only the
// index file.
type Store struct {
	baseDir string
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	indexMu sync.Mutex
}

var _ pipeline.ResultStore = (*Store)(nil)

// NewStore returns a Store rooted at baseDir ("pipelines" when empty),
// creating the directory immediately.
func NewStore(baseDir string, opts *Options) (*Store, error) {
	if baseDir == "" {
		baseDir = "pipelines"
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base dir: %w", err)
	}
	return &Store{
		baseDir: baseDir,
		logger:  o.Logger,
		locks:   map[string]*sync.Mutex{},
	}, nil
}

// BaseDir returns the directory the store writes under.
func (s *Store) BaseDir() string { return s.baseDir }

// IndexEntry is one pipeline's summary row in the index, enough to list and
// filter runs without loading full records.
type IndexEntry struct {
	PipelineID      string      `json:"pipeline_id"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	Status          task.Status `json:"status"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	DurationSeconds float64     `json:"duration_seconds"`
	TaskCount       int         `json:"task_count"`
	ErrorMessage    string      `json:"error_message,omitempty"`
}

// ListFilter narrows List results. The zero value lists everything.
type ListFilter struct {
	// Status keeps only runs with this status when non-empty.
	Status task.Status

	// Limit caps the number of entries returned; 0 means no limit.
	Limit int
}

// Save writes the full record for res and then its index entry. Saving the
// same pipeline id again overwrites the previous record, so a caller may
// persist a run more than once as it progresses. The index is written after
// the record; a concurrent List may briefly miss a record that Load would
// already find.
func (s *Store) Save(ctx context.Context, res *pipeline.Result) error {
	if res == nil || res.PipelineID == "" {
		return errors.New("storage: result must carry a pipeline id")
	}
	l := s.lock(res.PipelineID)
	l.Lock()
	defer l.Unlock()

	dir := s.runDir(res.PipelineID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: create run dir: %w", err)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode result %q: %w", res.PipelineID, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, resultFile), data); err != nil {
		return fmt.Errorf("storage: write result %q: %w", res.PipelineID, err)
	}
	entry := entryFor(res)
	if err := s.updateIndex(res.PipelineID, &entry); err != nil {
		return err
	}
	s.logger.Info("saved pipeline", "pipeline_id", res.PipelineID, "status", res.Status)
	return nil
}

// Load reads back the full record for id. Unknown ids return ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) (*pipeline.Result, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(id), resultFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read result %q: %w", id, err)
	}
	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("storage: decode result %q: %w", id, err)
	}
	return &res, nil
}

// List returns index entries matching filter, newest first by start time.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]IndexEntry, error) {
	s.indexMu.Lock()
	idx, err := s.readIndex()
	s.indexMu.Unlock()
	if err != nil {
		return nil, err
	}
	entries := make([]IndexEntry, 0, len(idx))
	for _, e := range idx {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].StartTime.Equal(entries[j].StartTime) {
			return entries[i].PipelineID < entries[j].PipelineID
		}
		return entries[i].StartTime.After(entries[j].StartTime)
	})
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}
	return entries, nil
}

// Delete removes id's run directory and index entry. It reports whether the
// record existed; deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	dir := s.runDir(id)
	_, statErr := os.Stat(dir)
	existed := statErr == nil
	if existed {
		if err := os.RemoveAll(dir); err != nil {
			return false, fmt.Errorf("storage: delete %q: %w", id, err)
		}
	}
	if err := s.updateIndex(id, nil); err != nil {
		return existed, err
	}
	if existed {
		s.logger.Info("deleted pipeline", "pipeline_id", id)
	}
	return existed, nil
}

func (s *Store) runDir(id string) string {
	return filepath.Join(s.baseDir, "pipeline_"+id)
}

func (s *Store) indexPath() string {
	return filepath.Join(s.baseDir, indexFile)
}

// lock returns the mutex for a pipeline id, creating it on first use.
func (s *Store) lock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// updateIndex rewrites the index with entry set (or removed when nil).
func (s *Store) updateIndex(id string, entry *IndexEntry) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()
	idx, err := s.readIndex()
	if err != nil {
		return err
	}
	if entry == nil {
		delete(idx, id)
	} else {
		idx[id] = *entry
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode index: %w", err)
	}
	if err := writeFileAtomic(s.indexPath(), data); err != nil {
		return fmt.Errorf("storage: write index: %w", err)
	}
	return nil
}

// readIndex loads the index map; a missing file is an empty index. Callers
// hold indexMu.
func (s *Store) readIndex() (map[string]IndexEntry, error) {
	data, err := os.ReadFile(s.indexPath())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]IndexEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read index: %w", err)
	}
	idx := map[string]IndexEntry{}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("storage: decode index: %w", err)
	}
	return idx, nil
}

func entryFor(res *pipeline.Result) IndexEntry {
	return IndexEntry{
		PipelineID:      res.PipelineID,
		Name:            res.Config.Name,
		Description:     res.Config.Description,
		Status:          res.Status,
		StartTime:       res.StartTime,
		EndTime:         res.EndTime,
		DurationSeconds: res.Duration().Seconds(),
		TaskCount:       len(res.Executions),
		ErrorMessage:    res.ErrorMessage,
	}
}

// writeFileAtomic writes data to a temp file in path's directory and renames
// it into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil {
		os.Remove(tmp.Name())
		return werr
	}
	if cerr != nil {
		os.Remove(tmp.Name())
		return cerr
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
