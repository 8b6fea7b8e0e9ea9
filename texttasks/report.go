package texttasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pipewright/pipewright/task"
)

// ReportTask merges the analysis statistics and the summary into a single
// JSON report.
//
// It depends on analyze and summarize. Inputs: data["stats"],
// data["summary"], and data["title"] when present. Outputs:
// files["report_file"] (pretty-printed JSON) and data["report"].
type ReportTask struct {
	scratchDir
}

// NewReport is the task.Factory for ReportTask.
func NewReport() task.Task { return &ReportTask{} }

func (t *ReportTask) Metadata() task.Metadata {
	return task.Metadata{
		TaskID:            "report",
		Name:              "Report Generation",
		Description:       "Merge statistics and summary into a JSON report",
		Version:           "1.0.0",
		InputKinds:        []task.Kind{KindStats, KindSummary},
		OutputKinds:       []task.Kind{KindReport},
		Dependencies:      []string{"analyze", "summarize"},
		EstimatedDuration: time.Second,
	}
}

// ValidateInputs requires both the stats and the summary; the default
// any-one-kind rule is too weak for a merge step.
func (t *ReportTask) ValidateInputs(in task.Inputs) bool {
	_, hasStats := in.GetData("stats")
	_, hasSummary := in.GetData("summary")
	return hasStats && hasSummary
}

func (t *ReportTask) Setup(ctx context.Context) error {
	return t.create("report-")
}

func (t *ReportTask) Cleanup(ctx context.Context) error {
	return t.remove()
}

func (t *ReportTask) Execute(ctx context.Context, in task.Inputs) (task.Outputs, error) {
	stats, _ := in.GetData("stats")
	summary, _ := in.GetData("summary")

	title := "Untitled"
	if v, ok := in.GetData("title"); ok {
		if s, ok := v.(string); ok && s != "" {
			title = s
		}
	}

	report := map[string]interface{}{
		"title":        title,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"stats":        stats,
		"summary":      summary,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return task.Outputs{}, fmt.Errorf("report: encode: %w", err)
	}

	outPath := t.path("report.json")
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return task.Outputs{}, fmt.Errorf("report: write report: %w", err)
	}

	out := task.NewOutputs()
	out.AddFile("report_file", outPath)
	out.AddData("report", report)
	return out, nil
}
