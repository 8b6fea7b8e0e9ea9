package pipeline

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

// --- Construction ---

func TestValue_RefAndLit(t *testing.T) {
	r := Ref("title")
	key, ok := r.IsRef()
	if !ok || key != "title" {
		t.Errorf("Ref: got (%q, %v)", key, ok)
	}
	if r.Literal() != nil {
		t.Errorf("a reference has no literal, got %v", r.Literal())
	}

	l := Lit(42)
	if _, ok := l.IsRef(); ok {
		t.Error("Lit should not be a reference")
	}
	if l.Literal() != 42 {
		t.Errorf("literal: got %v", l.Literal())
	}

	var zero Value
	if _, ok := zero.IsRef(); ok {
		t.Error("zero Value should be a literal")
	}
	if zero.Literal() != nil {
		t.Errorf("zero Value literal: got %v", zero.Literal())
	}
}

// --- JSON wire form ---

func TestValue_JSONMarshal(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"ref", Ref("summary"), `"$summary"`},
		{"plain literal", Lit("hello"), `"hello"`},
		{"dollar literal escaped", Lit("$5.00"), `"$$5.00"`},
		{"lone dollar escaped", Lit("$"), `"$$"`},
		{"number literal", Lit(3), `3`},
		{"nil literal", Lit(nil), `null`},
	}
	for _, c := range cases {
		got, err := json.Marshal(c.v)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if string(got) != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestValue_JSONUnmarshal(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`"$text"`), &v); err != nil {
		t.Fatal(err)
	}
	if key, ok := v.IsRef(); !ok || key != "text" {
		t.Errorf("$text should decode to a reference, got (%q, %v)", key, ok)
	}

	if err := json.Unmarshal([]byte(`"$$cash"`), &v); err != nil {
		t.Fatal(err)
	}
	if _, ok := v.IsRef(); ok {
		t.Error("$$cash should decode to a literal")
	}
	if v.Literal() != "$cash" {
		t.Errorf("escaped literal: got %v", v.Literal())
	}

	if err := json.Unmarshal([]byte(`"$"`), &v); err != nil {
		t.Fatal(err)
	}
	if v.Literal() != "$" {
		t.Errorf("lone dollar: got %v", v.Literal())
	}

	if err := json.Unmarshal([]byte(`{"max": 3}`), &v); err != nil {
		t.Fatal(err)
	}
	m, ok := v.Literal().(map[string]interface{})
	if !ok || m["max"] != float64(3) {
		t.Errorf("object literal: got %#v", v.Literal())
	}

	if err := json.Unmarshal([]byte(`null`), &v); err != nil {
		t.Fatal(err)
	}
	if v.Literal() != nil {
		t.Errorf("null: got %v", v.Literal())
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	inputs := map[string]Value{
		"doc":   Ref("document"),
		"price": Lit("$9.99"),
		"max":   Lit(float64(5)),
	}
	data, err := json.Marshal(inputs)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]Value
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if key, ok := back["doc"].IsRef(); !ok || key != "document" {
		t.Errorf("doc: got (%q, %v)", key, ok)
	}
	if back["price"].Literal() != "$9.99" {
		t.Errorf("price: got %v", back["price"].Literal())
	}
	if back["max"].Literal() != float64(5) {
		t.Errorf("max: got %v", back["max"].Literal())
	}
}

// --- YAML wire form ---

func TestValue_YAMLUnmarshal(t *testing.T) {
	src := `
doc: $document
price: $$9.99
count: 7
nested:
  a: 1
empty:
`
	var m map[string]Value
	if err := yaml.Unmarshal([]byte(src), &m); err != nil {
		t.Fatal(err)
	}
	if key, ok := m["doc"].IsRef(); !ok || key != "document" {
		t.Errorf("doc: got (%q, %v)", key, ok)
	}
	if m["price"].Literal() != "$9.99" {
		t.Errorf("price: got %v", m["price"].Literal())
	}
	if m["count"].Literal() != 7 {
		t.Errorf("count: got %v", m["count"].Literal())
	}
	nested, ok := m["nested"].Literal().(map[string]interface{})
	if !ok || nested["a"] != 1 {
		t.Errorf("nested: got %#v", m["nested"].Literal())
	}
	if m["empty"].Literal() != nil {
		t.Errorf("empty: got %v", m["empty"].Literal())
	}
}

func TestValue_YAMLRoundTrip(t *testing.T) {
	orig := map[string]Value{
		"doc":   Ref("text"),
		"label": Lit("$special"),
	}
	data, err := yaml.Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]Value
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if key, ok := back["doc"].IsRef(); !ok || key != "text" {
		t.Errorf("doc: got (%q, %v)", key, ok)
	}
	if back["label"].Literal() != "$special" {
		t.Errorf("label: got %v", back["label"].Literal())
	}
}
