package task

import "os"

// Kind is the symbolic type of a task input or output (e.g. "text", "stats",
// "report"). Kinds are an open set: the engine never interprets them beyond
// comparing them against carrier keys when matching one task's outputs to the
// next task's declared inputs.
type Kind string

// Inputs is the carrier handed to a task: Data for JSON-serializable values,
// Files for named paths on local disk, Metadata for informational context.
// Metadata never drives control flow. A key is either a data entry or a files
// entry, not both.
type Inputs struct {
	Data     map[string]interface{} `json:"data" yaml:"data"`
	Files    map[string]string      `json:"files" yaml:"files"`
	Metadata map[string]interface{} `json:"metadata" yaml:"metadata"`
}

// NewInputs returns an Inputs with all maps allocated.
func NewInputs() Inputs {
	return Inputs{
		Data:     make(map[string]interface{}),
		Files:    make(map[string]string),
		Metadata: make(map[string]interface{}),
	}
}

// GetData returns the data value for key and whether it is present.
func (in Inputs) GetData(key string) (interface{}, bool) {
	v, ok := in.Data[key]
	return v, ok
}

// GetFile returns the file path for key and whether it is present.
func (in Inputs) GetFile(key string) (string, bool) {
	p, ok := in.Files[key]
	return p, ok
}

// HasFile reports whether key names a file that currently exists on disk.
func (in Inputs) HasFile(key string) bool {
	p, ok := in.Files[key]
	if !ok {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}

// SetData stores a data value, allocating the map if needed. Carriers that
// came from deserialization may have nil maps.
func (in *Inputs) SetData(key string, value interface{}) {
	if in.Data == nil {
		in.Data = make(map[string]interface{})
	}
	in.Data[key] = value
}

// SetFile stores a file path, allocating the map if needed.
func (in *Inputs) SetFile(key, path string) {
	if in.Files == nil {
		in.Files = make(map[string]string)
	}
	in.Files[key] = path
}

// SetMetadata stores an informational value, allocating the map if needed.
func (in *Inputs) SetMetadata(key string, value interface{}) {
	if in.Metadata == nil {
		in.Metadata = make(map[string]interface{})
	}
	in.Metadata[key] = value
}

// Outputs is the carrier a task returns: same shape as Inputs. File paths
// must point at files the task created; the executor copies them into the
// pipeline's output directory and rewrites the paths to the copies.
type Outputs struct {
	Data     map[string]interface{} `json:"data" yaml:"data"`
	Files    map[string]string      `json:"files" yaml:"files"`
	Metadata map[string]interface{} `json:"metadata" yaml:"metadata"`
}

// NewOutputs returns an Outputs with all maps allocated.
func NewOutputs() Outputs {
	return Outputs{
		Data:     make(map[string]interface{}),
		Files:    make(map[string]string),
		Metadata: make(map[string]interface{}),
	}
}

// AddData stores a data value, allocating the map if needed.
func (out *Outputs) AddData(key string, value interface{}) {
	if out.Data == nil {
		out.Data = make(map[string]interface{})
	}
	out.Data[key] = value
}

// AddFile stores a file path, allocating the map if needed.
func (out *Outputs) AddFile(key, path string) {
	if out.Files == nil {
		out.Files = make(map[string]string)
	}
	out.Files[key] = path
}

// AddMetadata stores an informational value, allocating the map if needed.
func (out *Outputs) AddMetadata(key string, value interface{}) {
	if out.Metadata == nil {
		out.Metadata = make(map[string]interface{})
	}
	out.Metadata[key] = value
}

// GetData returns the data value for key and whether it is present.
func (out Outputs) GetData(key string) (interface{}, bool) {
	v, ok := out.Data[key]
	return v, ok
}

// GetFile returns the file path for key and whether it is present.
func (out Outputs) GetFile(key string) (string, bool) {
	p, ok := out.Files[key]
	return p, ok
}

// Merge copies every entry of from into out, overwriting existing keys.
// The executor uses it to accumulate outputs across a pipeline run: a later
// producer of a key wins over an earlier one.
func (out *Outputs) Merge(from Outputs) {
	for k, v := range from.Data {
		out.AddData(k, v)
	}
	for k, p := range from.Files {
		out.AddFile(k, p)
	}
	for k, v := range from.Metadata {
		out.AddMetadata(k, v)
	}
}
