// Package texttasks provides ready-made tasks for turning a raw text
// document into statistics, a summary, and a JSON report.
//
// The chain: ingest reads and normalizes a document, analyze computes word
// statistics, summarize extracts leading sentences, and report merges both
// into one JSON file. Outputs flow between them by kind, so a pipeline
// usually needs no explicit input wiring:
//
//	reg := task.NewRegistry()
//	texttasks.RegisterAll(reg)
//	exec, _ := pipeline.NewExecutor(reg, nil)
//	res, err := exec.Execute(ctx, cfg, map[string]interface{}{
//		"document": "notes.txt",
//	}, nil)
//
// RegisterTemplates adds the built-in pipelines text_to_report, ingest_only
// and analysis_only to a template library.
//
// Tasks read tuning parameters (top_words, max_sentences) from their data
// inputs, so they can come from configured literals, template overrides, or
// the initial pipeline inputs.
package texttasks
