package task

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Registry maps task ids to factories and resolves execution order from the
// tasks' declared dependencies. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	metadata  map[string]Metadata
	order     []string // registration order; also the tie-break for resolution
	logger    *slog.Logger
}

// NewRegistry returns an empty task registry logging through slog.Default().
func NewRegistry() *Registry {
	return NewRegistryWithLogger(nil)
}

// NewRegistryWithLogger returns an empty task registry logging through
// logger. A nil logger falls back to slog.Default().
func NewRegistryWithLogger(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		factories: make(map[string]Factory),
		metadata:  make(map[string]Metadata),
		logger:    logger,
	}
}

// Register adds the task produced by fn under its metadata task id. The
// factory is invoked once here to capture metadata; every execution gets a
// fresh instance later. Re-registering an id overwrites the previous
// registration with a warning, last writer wins.
func (r *Registry) Register(fn Factory) error {
	if fn == nil {
		return fmt.Errorf("register: nil factory")
	}
	t := fn()
	if t == nil {
		return fmt.Errorf("register: factory returned nil task")
	}
	meta := t.Metadata()
	if meta.TaskID == "" {
		return fmt.Errorf("register: task metadata has empty task_id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[meta.TaskID]; exists {
		r.logger.Warn("task already registered, overwriting", "task_id", meta.TaskID)
	} else {
		r.order = append(r.order, meta.TaskID)
	}
	r.factories[meta.TaskID] = fn
	r.metadata[meta.TaskID] = meta.clone()
	r.logger.Info("registered task", "task_id", meta.TaskID)
	return nil
}

// MustRegister is Register but panics on error. Use for built-in tasks whose
// metadata is known to be valid.
func (r *Registry) MustRegister(fn Factory) {
	if err := r.Register(fn); err != nil {
		panic(fmt.Sprintf("task: %v", err))
	}
}

// New returns a fresh instance of the task registered under id. The error
// wraps ErrNotRegistered and names the known ids.
func (r *Registry) New(id string) (Task, error) {
	r.mu.RLock()
	fn, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (known tasks: %s)", ErrNotRegistered, id, strings.Join(r.TaskIDs(), ", "))
	}
	return fn(), nil
}

// Metadata returns a copy of the metadata captured when id was registered.
func (r *Registry) Metadata(id string) (Metadata, error) {
	r.mu.RLock()
	meta, ok := r.metadata[id]
	r.mu.RUnlock()
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %q", ErrNotRegistered, id)
	}
	return meta.clone(), nil
}

// TaskIDs returns all registered task ids in registration order.
func (r *Registry) TaskIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// AllMetadata returns metadata for every registered task in registration
// order.
func (r *Registry) AllMetadata() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Metadata, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.metadata[id].clone())
	}
	return all
}

// Compatible returns, in registration order, the ids of tasks that could run
// given the keys already present in available: a task qualifies when at
// least one of its declared input kinds is an available data or files key.
// A task declaring no input kinds is not reported.
func (r *Registry) Compatible(available Outputs) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, id := range r.order {
		for _, kind := range r.metadata[id].InputKinds {
			key := string(kind)
			_, inData := available.Data[key]
			_, inFiles := available.Files[key]
			if inData || inFiles {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids
}

// ResolveDependencies expands ids to their transitive dependency closure and
// returns a topological execution order: every task runs after all of its
// dependencies. The order is deterministic for a given registry and request.
// Discovery order is the requested ids in the order given, then dependencies
// depth-first as encountered; among tasks ready at the same time, the one
// discovered first runs first. Unknown ids wrap ErrNotRegistered. A cycle
// returns *CircularDependencyError naming the unordered remainder.
func (r *Registry) ResolveDependencies(ids []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Transitive closure in discovery order.
	var closure []string
	index := make(map[string]int)
	var visit func(id string) error
	visit = func(id string) error {
		if _, seen := index[id]; seen {
			return nil
		}
		meta, ok := r.metadata[id]
		if !ok {
			return fmt.Errorf("%w: %q", ErrNotRegistered, id)
		}
		index[id] = len(closure)
		closure = append(closure, id)
		for _, dep := range meta.Dependencies {
			if err := visit(dep); err != nil {
				return fmt.Errorf("dependency of %q: %w", id, err)
			}
		}
		return nil
	}
	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	// Kahn's algorithm; edges run dependency -> dependent.
	indegree := make(map[string]int, len(closure))
	dependents := make(map[string][]string, len(closure))
	for _, id := range closure {
		for _, dep := range r.metadata[id].Dependencies {
			dependents[dep] = append(dependents[dep], id)
			indegree[id]++
		}
	}

	var ready []string
	for _, id := range closure {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	order := make([]string, 0, len(closure))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = insertByDiscovery(ready, dep, index)
			}
		}
	}

	if len(order) != len(closure) {
		ordered := make(map[string]bool, len(order))
		for _, id := range order {
			ordered[id] = true
		}
		var remaining []string
		for _, id := range closure {
			if !ordered[id] {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		return nil, &CircularDependencyError{Remaining: remaining}
	}
	return order, nil
}

// insertByDiscovery inserts id into ready keeping the slice sorted by
// discovery index, so the ready queue always pops the earliest-discovered
// task first.
func insertByDiscovery(ready []string, id string, index map[string]int) []string {
	pos := len(ready)
	for i, other := range ready {
		if index[id] < index[other] {
			pos = i
			break
		}
	}
	ready = append(ready, "")
	copy(ready[pos+1:], ready[pos:])
	ready[pos] = id
	return ready
}

// ChainValidation is the outcome of ValidateChain: whether the chain can
// run, the issues found, and the execution order when validation passed.
type ChainValidation struct {
	Valid  bool
	Issues []string
	Order  []string
}

// ValidateChain checks a requested chain without executing anything. Every
// id must be registered and the dependency graph acyclic; on top of that,
// each task's declared input kinds should intersect the outputs of earlier
// tasks in the resolved order. A directly requested task running first is
// exempt from the kind check, since its inputs come from the caller. Order
// is set only when no issues were found.
func (r *Registry) ValidateChain(ids []string) ChainValidation {
	var issues []string

	r.mu.RLock()
	for _, id := range ids {
		if _, ok := r.factories[id]; !ok {
			issues = append(issues, fmt.Sprintf("task %q is not registered", id))
		}
	}
	r.mu.RUnlock()
	if len(issues) > 0 {
		return ChainValidation{Issues: issues}
	}

	order, err := r.ResolveDependencies(ids)
	if err != nil {
		return ChainValidation{Issues: []string{err.Error()}}
	}

	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}
	available := make(map[string]bool)
	for _, id := range order {
		meta, merr := r.Metadata(id)
		if merr != nil {
			issues = append(issues, merr.Error())
			continue
		}
		if len(meta.InputKinds) > 0 && !kindsIntersect(meta.InputKinds, available) {
			if !requested[id] || len(available) > 0 {
				issues = append(issues, fmt.Sprintf("task %q requires inputs %v but only %v are available",
					id, kindStrings(meta.InputKinds), sortedKeys(available)))
			}
		}
		for _, k := range meta.OutputKinds {
			available[string(k)] = true
		}
	}

	if len(issues) > 0 {
		return ChainValidation{Issues: issues}
	}
	return ChainValidation{Valid: true, Order: order}
}

func kindsIntersect(kinds []Kind, available map[string]bool) bool {
	for _, k := range kinds {
		if available[string(k)] {
			return true
		}
	}
	return false
}

func kindStrings(kinds []Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
