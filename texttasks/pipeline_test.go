package texttasks

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pipewright/pipewright/pipeline"
	"github.com/pipewright/pipewright/storage"
	"github.com/pipewright/pipewright/task"
	"github.com/pipewright/pipewright/templates"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voyage.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleDoc = "Voyage Notes\r\n\r\n" +
	"Day one was calm. The wind came later and pushed us east.\r\n\r\n" +
	"Day two brought rain. We stayed below deck and read.\r\n\r\n" +
	"Day three we landed. Everyone cheered loudly.\r\n"

func TestTextToReportPipeline(t *testing.T) {
	ctx := context.Background()
	doc := writeDoc(t, sampleDoc)

	reg := task.NewRegistryWithLogger(quiet())
	if err := RegisterAll(reg); err != nil {
		t.Fatal(err)
	}
	lib := templates.NewLibraryWithLogger(quiet())
	if err := RegisterTemplates(lib); err != nil {
		t.Fatal(err)
	}
	cfg, err := lib.Get("text_to_report")
	if err != nil {
		t.Fatal(err)
	}

	base := t.TempDir()
	store, err := storage.NewStore(base, &storage.Options{Logger: quiet()})
	if err != nil {
		t.Fatal(err)
	}
	exec, err := pipeline.NewExecutor(reg, &pipeline.Options{
		BaseDir: base,
		Logger:  quiet(),
		Store:   store,
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := exec.Execute(ctx, cfg, map[string]interface{}{"document": doc}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != task.StatusCompleted {
		t.Fatalf("status: %s (%s)", res.Status, res.ErrorMessage)
	}

	wantOrder := []string{"ingest", "analyze", "summarize", "report"}
	if len(res.Executions) != len(wantOrder) {
		t.Fatalf("executions: got %d, want %d", len(res.Executions), len(wantOrder))
	}
	for i, want := range wantOrder {
		if res.Executions[i].TaskID != want {
			t.Errorf("executions[%d]: got %s, want %s", i, res.Executions[i].TaskID, want)
		}
	}

	if res.FinalOutputs.Data["title"] != "Voyage Notes" {
		t.Errorf("title: got %v", res.FinalOutputs.Data["title"])
	}
	summary, _ := res.FinalOutputs.Data["summary"].(string)
	if !strings.Contains(summary, "Voyage Notes") || !strings.Contains(summary, "Day one was calm.") {
		t.Errorf("summary: got %q", summary)
	}

	// The report file must live inside the run directory even though the
	// task wrote it to scratch space that cleanup has since removed.
	reportPath := res.FinalOutputs.Files["report_file"]
	wantDir := filepath.Join(base, "pipeline_"+res.PipelineID, "task_report")
	if filepath.Dir(reportPath) != wantDir {
		t.Errorf("report path: got %q, want it under %q", reportPath, wantDir)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatal(err)
	}
	var report map[string]interface{}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report JSON: %v", err)
	}
	if report["title"] != "Voyage Notes" {
		t.Errorf("report title: %v", report["title"])
	}

	// The run is also queryable through storage.
	loaded, err := store.Load(ctx, res.PipelineID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Status != task.StatusCompleted || len(loaded.Executions) != 4 {
		t.Errorf("stored run: %s, %d executions", loaded.Status, len(loaded.Executions))
	}
}

func TestSummarizeRequestPullsInIngest(t *testing.T) {
	ctx := context.Background()
	doc := writeDoc(t, sampleDoc)

	reg := task.NewRegistryWithLogger(quiet())
	if err := RegisterAll(reg); err != nil {
		t.Fatal(err)
	}
	exec, err := pipeline.NewExecutor(reg, &pipeline.Options{BaseDir: t.TempDir(), Logger: quiet()})
	if err != nil {
		t.Fatal(err)
	}

	cfg := pipeline.Config{
		Name:  "summary only",
		Tasks: []pipeline.TaskConfig{{TaskID: "summarize"}},
	}
	res, err := exec.Execute(ctx, cfg, map[string]interface{}{"document": doc}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != task.StatusCompleted {
		t.Fatalf("status: %s (%s)", res.Status, res.ErrorMessage)
	}
	if len(res.Executions) != 2 || res.Executions[0].TaskID != "ingest" || res.Executions[1].TaskID != "summarize" {
		t.Errorf("executions: %v", res.Executions)
	}
}

func TestAnalysisOnlyTemplate(t *testing.T) {
	ctx := context.Background()

	reg := task.NewRegistryWithLogger(quiet())
	if err := RegisterAll(reg); err != nil {
		t.Fatal(err)
	}
	lib := templates.NewLibraryWithLogger(quiet())
	if err := RegisterTemplates(lib); err != nil {
		t.Fatal(err)
	}
	cfg, err := lib.Get("analysis_only")
	if err != nil {
		t.Fatal(err)
	}

	exec, err := pipeline.NewExecutor(reg, &pipeline.Options{BaseDir: t.TempDir(), Logger: quiet()})
	if err != nil {
		t.Fatal(err)
	}
	res, err := exec.Execute(ctx, cfg, map[string]interface{}{
		"text": "wind and rain and wind",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != task.StatusCompleted {
		t.Fatalf("status: %s (%s)", res.Status, res.ErrorMessage)
	}
	stats, ok := res.FinalOutputs.Data["stats"].(map[string]interface{})
	if !ok || stats["word_count"] != 5 {
		t.Errorf("stats: %#v", res.FinalOutputs.Data["stats"])
	}
}

func TestChainValidation(t *testing.T) {
	reg := task.NewRegistryWithLogger(quiet())
	if err := RegisterAll(reg); err != nil {
		t.Fatal(err)
	}

	v := reg.ValidateChain([]string{"ingest", "analyze", "summarize", "report"})
	if !v.Valid {
		t.Fatalf("chain should validate, issues: %v", v.Issues)
	}
	want := []string{"ingest", "analyze", "summarize", "report"}
	for i := range want {
		if v.Order[i] != want[i] {
			t.Fatalf("order: got %v, want %v", v.Order, want)
		}
	}
}
