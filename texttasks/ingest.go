package texttasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pipewright/pipewright/task"
)

// IngestTask reads a raw document and produces normalized plain text:
// Unix line endings, no trailing whitespace, blank runs collapsed to a
// single separator line.
//
// Inputs: files["document"]. Outputs: files["text"], data["title"] (first
// non-blank line, or the filename), data["line_count"].
type IngestTask struct {
	scratchDir
}

// NewIngest is the task.Factory for IngestTask.
func NewIngest() task.Task { return &IngestTask{} }

func (t *IngestTask) Metadata() task.Metadata {
	return task.Metadata{
		TaskID:            "ingest",
		Name:              "Document Ingestion",
		Description:       "Read a raw document and normalize it to plain text",
		Version:           "1.0.0",
		InputKinds:        []task.Kind{KindDocument},
		OutputKinds:       []task.Kind{KindText},
		EstimatedDuration: 2 * time.Second,
	}
}

// ValidateInputs requires an actual document file; a data entry under the
// same key is not ingestible.
func (t *IngestTask) ValidateInputs(in task.Inputs) bool {
	_, ok := in.GetFile("document")
	return ok
}

func (t *IngestTask) Setup(ctx context.Context) error {
	return t.create("ingest-")
}

func (t *IngestTask) Cleanup(ctx context.Context) error {
	return t.remove()
}

func (t *IngestTask) Execute(ctx context.Context, in task.Inputs) (task.Outputs, error) {
	path, _ := in.GetFile("document")
	raw, err := os.ReadFile(path)
	if err != nil {
		return task.Outputs{}, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	text, title, lines := normalize(string(raw))
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	outPath := t.path("text.txt")
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return task.Outputs{}, fmt.Errorf("ingest: write text: %w", err)
	}

	out := task.NewOutputs()
	out.AddFile("text", outPath)
	out.AddData("title", title)
	out.AddData("line_count", lines)
	out.AddMetadata("source_document", path)
	return out, nil
}

// normalize converts line endings to \n, strips trailing whitespace per
// line, collapses blank runs to one separator, and returns the text, the
// first non-blank line, and the line count of the result.
func normalize(raw string) (text, title string, lines int) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var out []string
	blank := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		if title == "" {
			title = strings.TrimSpace(line)
		}
		out = append(out, line)
	}

	text = strings.Join(out, "\n")
	if text != "" {
		text += "\n"
	}
	return text, title, len(out)
}
