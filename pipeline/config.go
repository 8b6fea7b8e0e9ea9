package pipeline

// TaskConfig configures one task within a pipeline: which task to run, the
// configured input mappings, and task-specific settings. A task pulled into
// the run purely as a dependency executes with the zero config for its id.
type TaskConfig struct {
	TaskID   string                 `json:"task_id" yaml:"task_id"`
	Inputs   map[string]Value       `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Config describes a pipeline: its name, the ordered task configurations,
// and free-form pipeline-wide settings and metadata. Treat a Config as
// immutable once a run starts; the Result embeds it as a snapshot.
type Config struct {
	Name        string                 `json:"name" yaml:"name"`
	Description string                 `json:"description" yaml:"description"`
	Tasks       []TaskConfig           `json:"tasks" yaml:"tasks"`
	Settings    map[string]interface{} `json:"settings,omitempty" yaml:"settings,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// TaskIDs returns the configured task ids in declaration order.
func (c Config) TaskIDs() []string {
	ids := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		ids[i] = t.TaskID
	}
	return ids
}

// taskConfig returns the first configuration declared for id, or the zero
// config when id was pulled in as a dependency only.
func (c Config) taskConfig(id string) TaskConfig {
	for _, t := range c.Tasks {
		if t.TaskID == id {
			return t
		}
	}
	return TaskConfig{TaskID: id}
}

// Clone returns a copy sharing no maps or slices with c. Literal input
// values are shared; treat them as immutable.
func (c Config) Clone() Config {
	out := c
	if c.Tasks != nil {
		out.Tasks = make([]TaskConfig, len(c.Tasks))
		for i, t := range c.Tasks {
			out.Tasks[i] = t.clone()
		}
	}
	out.Settings = cloneMap(c.Settings)
	out.Metadata = cloneMap(c.Metadata)
	return out
}

func (t TaskConfig) clone() TaskConfig {
	out := t
	if t.Inputs != nil {
		out.Inputs = make(map[string]Value, len(t.Inputs))
		for k, v := range t.Inputs {
			out.Inputs[k] = v
		}
	}
	out.Settings = cloneMap(t.Settings)
	return out
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
