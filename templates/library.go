package templates

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pipewright/pipewright/pipeline"
)

// ErrUnknownTemplate is returned when a template name is not registered.
var ErrUnknownTemplate = errors.New("pipeline template not registered")

// Builder produces a pipeline configuration. The Library clones whatever a
// builder returns before handing it out, so a builder may return a shared
// config value.
type Builder func() pipeline.Config

// Library holds named pipeline templates. Register builders at startup,
// then Get ready-made configs or Build customized ones per run. Safe for
// concurrent use.
type Library struct {
	mu       sync.RWMutex
	builders map[string]Builder
	order    []string
	logger   *slog.Logger
}

// NewLibrary returns an empty Library logging to slog.Default().
func NewLibrary() *Library {
	return NewLibraryWithLogger(nil)
}

// NewLibraryWithLogger returns an empty Library using the given logger; nil
// means slog.Default().
func NewLibraryWithLogger(logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		builders: map[string]Builder{},
		logger:   logger,
	}
}

// Register adds a template under name. Registering an existing name
// replaces the previous builder and keeps its position.
func (l *Library) Register(name string, b Builder) error {
	if name == "" {
		return errors.New("template name must not be empty")
	}
	if b == nil {
		return fmt.Errorf("template %q: nil builder", name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.builders[name]; exists {
		l.logger.Warn("template already registered, overwriting", "template", name)
	} else {
		l.order = append(l.order, name)
	}
	l.builders[name] = b
	return nil
}

// MustRegister is Register, panicking on error. For package init blocks.
func (l *Library) MustRegister(name string, b Builder) {
	if err := l.Register(name, b); err != nil {
		panic(err)
	}
}

// Get builds a fresh config for name. Every call returns an independent
// copy; mutating it does not affect later calls.
func (l *Library) Get(name string) (pipeline.Config, error) {
	l.mu.RLock()
	b, ok := l.builders[name]
	l.mu.RUnlock()
	if !ok {
		return pipeline.Config{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return b().Clone(), nil
}

// Names returns the registered template names in registration order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Info summarizes one template for listings.
type Info struct {
	// Name is the registered template name; DisplayName the config's own.
	Name        string
	DisplayName string
	Description string
	TaskIDs     []string

	// Category and EstimatedDuration come from the config's metadata keys
	// "category" and "estimated_duration"; empty when absent.
	Category          string
	EstimatedDuration string
}

// Info builds every registered template and summarizes it, in registration
// order.
func (l *Library) Info() []Info {
	names := l.Names()
	out := make([]Info, 0, len(names))
	for _, name := range names {
		cfg, err := l.Get(name)
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:              name,
			DisplayName:       cfg.Name,
			Description:       cfg.Description,
			TaskIDs:           cfg.TaskIDs(),
			Category:          metaString(cfg.Metadata, "category"),
			EstimatedDuration: metaString(cfg.Metadata, "estimated_duration"),
		})
	}
	return out
}

func metaString(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// TaskOverride customizes one task within a built template. Inputs and
// Settings are merged key by key over the template's values.
type TaskOverride struct {
	Inputs   map[string]pipeline.Value
	Settings map[string]interface{}
}

// Overrides customizes a template build. Tasks is keyed by task id;
// Settings and Metadata merge into the pipeline-wide maps.
type Overrides struct {
	Tasks    map[string]TaskOverride
	Settings map[string]interface{}
	Metadata map[string]interface{}
}

// Build returns name's config with ov applied to a fresh copy. Overriding a
// task id the template does not configure is an error; use it to catch
// typos rather than silently building an uncustomized pipeline.
func (l *Library) Build(name string, ov *Overrides) (pipeline.Config, error) {
	cfg, err := l.Get(name)
	if err != nil {
		return pipeline.Config{}, err
	}
	if ov == nil {
		return cfg, nil
	}

	for taskID, to := range ov.Tasks {
		idx := -1
		for i := range cfg.Tasks {
			if cfg.Tasks[i].TaskID == taskID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return pipeline.Config{}, fmt.Errorf("template %q: task %q not in template", name, taskID)
		}
		tc := &cfg.Tasks[idx]
		for k, v := range to.Inputs {
			if tc.Inputs == nil {
				tc.Inputs = map[string]pipeline.Value{}
			}
			tc.Inputs[k] = v
		}
		for k, v := range to.Settings {
			if tc.Settings == nil {
				tc.Settings = map[string]interface{}{}
			}
			tc.Settings[k] = v
		}
	}

	for k, v := range ov.Settings {
		if cfg.Settings == nil {
			cfg.Settings = map[string]interface{}{}
		}
		cfg.Settings[k] = v
	}
	for k, v := range ov.Metadata {
		if cfg.Metadata == nil {
			cfg.Metadata = map[string]interface{}{}
		}
		cfg.Metadata[k] = v
	}
	return cfg, nil
}
