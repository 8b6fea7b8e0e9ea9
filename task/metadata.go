package task

import "time"

// Metadata describes a task to the scheduler: identity, the input kinds it
// accepts, the output kinds it produces, and the ids of tasks that must run
// before it. The registry captures a copy at registration; treat it as
// read-only afterwards.
type Metadata struct {
	TaskID      string `json:"task_id" yaml:"task_id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`

	// InputKinds and OutputKinds are matched by equality against carrier
	// keys when inputs are built and chains are validated.
	InputKinds  []Kind `json:"input_types" yaml:"input_types"`
	OutputKinds []Kind `json:"output_types" yaml:"output_types"`

	// Dependencies are task ids that must complete earlier in the same
	// pipeline. The registry pulls them into the execution order even when
	// they are not requested explicitly.
	Dependencies []string `json:"dependencies" yaml:"dependencies"`

	// EstimatedDuration and ResourceHints are advisory only; the engine
	// never schedules from them.
	EstimatedDuration time.Duration          `json:"estimated_duration" yaml:"estimated_duration"`
	ResourceHints     map[string]interface{} `json:"resource_requirements" yaml:"resource_requirements"`
}

// clone returns a copy that shares no slices or maps with m.
func (m Metadata) clone() Metadata {
	c := m
	if m.InputKinds != nil {
		c.InputKinds = append([]Kind(nil), m.InputKinds...)
	}
	if m.OutputKinds != nil {
		c.OutputKinds = append([]Kind(nil), m.OutputKinds...)
	}
	if m.Dependencies != nil {
		c.Dependencies = append([]string(nil), m.Dependencies...)
	}
	if m.ResourceHints != nil {
		c.ResourceHints = make(map[string]interface{}, len(m.ResourceHints))
		for k, v := range m.ResourceHints {
			c.ResourceHints[k] = v
		}
	}
	return c
}
