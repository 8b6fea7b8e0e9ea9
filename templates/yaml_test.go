package templates

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig(t *testing.T) {
	src := `
name: doc-report
description: one document in, one report out
tasks:
  - task_id: ingest
    inputs:
      document: $source_file
  - task_id: report
    inputs:
      heading: $title
      footer: plain text
      price: $$4.99
    settings:
      format: markdown
      max_items: 5
settings:
  locale: en
`
	cfg, err := ParseConfig([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "doc-report" || len(cfg.Tasks) != 2 {
		t.Fatalf("config: %+v", cfg)
	}
	if key, ok := cfg.Tasks[0].Inputs["document"].IsRef(); !ok || key != "source_file" {
		t.Errorf("document input: %v %v", key, ok)
	}
	report := cfg.Tasks[1]
	if report.Inputs["footer"].Literal() != "plain text" {
		t.Errorf("footer: %v", report.Inputs["footer"])
	}
	if report.Inputs["price"].Literal() != "$4.99" {
		t.Errorf("escaped literal: %v", report.Inputs["price"])
	}
	if report.Settings["format"] != "markdown" || report.Settings["max_items"] != 5 {
		t.Errorf("settings: %v", report.Settings)
	}
	if cfg.Settings["locale"] != "en" {
		t.Errorf("pipeline settings: %v", cfg.Settings)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	if _, err := ParseConfig([]byte("tasks: {not: [a, list")); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestParseConfigSet(t *testing.T) {
	src := `
pipelines:
  nightly:
    name: nightly_report
    tasks:
      - task_id: ingest
      - task_id: report
  quick:
    tasks:
      - task_id: ingest
`
	set, err := ParseConfigSet([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Pipelines) != 2 {
		t.Fatalf("pipelines: %v", set.Pipelines)
	}
	if set.Pipelines["nightly"].Name != "nightly_report" {
		t.Errorf("nightly: %+v", set.Pipelines["nightly"])
	}
	if len(set.Pipelines["quick"].Tasks) != 1 {
		t.Errorf("quick: %+v", set.Pipelines["quick"])
	}
}

func TestLibrary_LoadFile(t *testing.T) {
	src := `
pipelines:
  nightly:
    name: nightly_report
    tasks:
      - task_id: ingest
      - task_id: report
        inputs:
          heading: $title
  quick:
    tasks:
      - task_id: ingest
`
	path := filepath.Join(t.TempDir(), "pipelines.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	lib := NewLibraryWithLogger(quiet())
	if err := lib.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	names := lib.Names()
	if len(names) != 2 || names[0] != "nightly" || names[1] != "quick" {
		t.Fatalf("names: %v", names)
	}

	nightly, err := lib.Get("nightly")
	if err != nil {
		t.Fatal(err)
	}
	if nightly.Name != "nightly_report" {
		t.Errorf("name: %q", nightly.Name)
	}
	if key, ok := nightly.Tasks[1].Inputs["heading"].IsRef(); !ok || key != "title" {
		t.Errorf("reference should survive loading: %v %v", key, ok)
	}

	// "quick" has no name of its own; the map key fills in.
	quick, err := lib.Get("quick")
	if err != nil {
		t.Fatal(err)
	}
	if quick.Name != "quick" {
		t.Errorf("fallback name: %q", quick.Name)
	}
}

func TestLibrary_LoadFile_Missing(t *testing.T) {
	lib := NewLibraryWithLogger(quiet())
	if err := lib.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
