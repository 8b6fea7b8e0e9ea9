package pipeline

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is a configured task input: either a literal handed to the task
// unchanged, or a reference to a key produced earlier in the pipeline.
// References are explicit, so a literal string that merely begins with "$"
// is never mistaken for one. The zero Value is a literal nil.
type Value struct {
	ref     string
	literal interface{}
}

// Ref returns a Value that resolves against the available outputs at
// input-build time: data entries first, then files. An unproduced key
// resolves to nothing; the input entry is omitted rather than failing the
// task. Ref("") is the literal nil.
func Ref(key string) Value { return Value{ref: key} }

// Lit returns a literal Value.
func Lit(v interface{}) Value { return Value{literal: v} }

// IsRef returns the referenced key and whether v is a reference.
func (v Value) IsRef() (string, bool) { return v.ref, v.ref != "" }

// Literal returns the literal value; nil for references.
func (v Value) Literal() interface{} {
	if v.ref != "" {
		return nil
	}
	return v.literal
}

// valueFromString decodes the wire convention shared by JSON and YAML:
// "$key" is a reference, "$$..." is the literal with one dollar stripped,
// anything else is a literal. A lone "$" is the literal "$".
func valueFromString(s string) Value {
	switch {
	case strings.HasPrefix(s, "$$"):
		return Value{literal: s[1:]}
	case strings.HasPrefix(s, "$") && len(s) > 1:
		return Value{ref: s[1:]}
	default:
		return Value{literal: s}
	}
}

// wireValue returns the marshaled form: "$key" for references, literal
// strings starting with "$" escaped by doubling it.
func (v Value) wireValue() interface{} {
	if v.ref != "" {
		return "$" + v.ref
	}
	if s, ok := v.literal.(string); ok && strings.HasPrefix(s, "$") {
		return "$" + s
	}
	return v.literal
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.wireValue())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = valueFromString(s)
		return nil
	}
	var lit interface{}
	if err := json.Unmarshal(data, &lit); err != nil {
		return err
	}
	*v = Value{literal: lit}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.wireValue(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler: a scalar string goes through
// the "$" convention, any other node is decoded as a literal.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*v = Value{}
		return nil
	}
	var s string
	if err := node.Decode(&s); err == nil {
		*v = valueFromString(s)
		return nil
	}
	var lit interface{}
	if err := node.Decode(&lit); err != nil {
		return err
	}
	*v = Value{literal: lit}
	return nil
}
