package texttasks

import (
	"github.com/pipewright/pipewright/pipeline"
	"github.com/pipewright/pipewright/task"
	"github.com/pipewright/pipewright/templates"
)

// RegisterAll registers every built-in text task with reg.
func RegisterAll(reg *task.Registry) error {
	for _, f := range []task.Factory{NewIngest, NewAnalyze, NewSummarize, NewReport} {
		if err := reg.Register(f); err != nil {
			return err
		}
	}
	return nil
}

// RegisterTemplates registers the built-in pipeline templates with lib:
// text_to_report (the full chain), ingest_only, and analysis_only.
func RegisterTemplates(lib *templates.Library) error {
	entries := []struct {
		name    string
		builder templates.Builder
	}{
		{"text_to_report", textToReportConfig},
		{"ingest_only", ingestOnlyConfig},
		{"analysis_only", analysisOnlyConfig},
	}
	for _, e := range entries {
		if err := lib.Register(e.name, e.builder); err != nil {
			return err
		}
	}
	return nil
}

func textToReportConfig() pipeline.Config {
	return pipeline.Config{
		Name:        "Text to Report",
		Description: "Ingest a document, analyze and summarize it, and produce a JSON report",
		Tasks: []pipeline.TaskConfig{
			{TaskID: "ingest"},
			{TaskID: "analyze", Inputs: map[string]pipeline.Value{
				"top_words": pipeline.Lit(10),
			}},
			{TaskID: "summarize", Inputs: map[string]pipeline.Value{
				"max_sentences": pipeline.Lit(3),
			}},
			{TaskID: "report"},
		},
		Settings: map[string]interface{}{
			"save_intermediates": true,
		},
		Metadata: map[string]interface{}{
			"template_version":   "1.0.0",
			"category":           "reporting",
			"estimated_duration": "1m",
		},
	}
}

func ingestOnlyConfig() pipeline.Config {
	return pipeline.Config{
		Name:        "Ingest Only",
		Description: "Normalize a document to plain text without analysis",
		Tasks: []pipeline.TaskConfig{
			{TaskID: "ingest"},
		},
		Metadata: map[string]interface{}{
			"template_version":   "1.0.0",
			"category":           "ingestion",
			"estimated_duration": "10s",
		},
	}
}

func analysisOnlyConfig() pipeline.Config {
	return pipeline.Config{
		Name:        "Analysis Only",
		Description: "Compute statistics for text supplied in the initial inputs",
		Tasks: []pipeline.TaskConfig{
			{TaskID: "analyze"},
		},
		Metadata: map[string]interface{}{
			"template_version":   "1.0.0",
			"category":           "analysis",
			"estimated_duration": "10s",
		},
	}
}
