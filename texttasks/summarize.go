package texttasks

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pipewright/pipewright/task"
)

// SummarizeTask builds an extractive summary from the first sentence of
// each paragraph, in document order.
//
// It depends on ingest, so a pipeline requesting only summarize still pulls
// the ingestion step in. Inputs: files["text"] or data["text"];
// data["max_sentences"] caps the summary length (default 3). Outputs:
// files["summary_file"], data["summary"].
type SummarizeTask struct {
	scratchDir
}

// NewSummarize is the task.Factory for SummarizeTask.
func NewSummarize() task.Task { return &SummarizeTask{} }

func (t *SummarizeTask) Metadata() task.Metadata {
	return task.Metadata{
		TaskID:            "summarize",
		Name:              "Text Summarization",
		Description:       "Extract the leading sentence of each paragraph into a short summary",
		Version:           "1.0.0",
		InputKinds:        []task.Kind{KindText},
		OutputKinds:       []task.Kind{KindSummary},
		Dependencies:      []string{"ingest"},
		EstimatedDuration: time.Second,
	}
}

func (t *SummarizeTask) Setup(ctx context.Context) error {
	return t.create("summarize-")
}

func (t *SummarizeTask) Cleanup(ctx context.Context) error {
	return t.remove()
}

func (t *SummarizeTask) Execute(ctx context.Context, in task.Inputs) (task.Outputs, error) {
	text, err := readText(in)
	if err != nil {
		return task.Outputs{}, fmt.Errorf("summarize: %w", err)
	}
	max := intParam(in, "max_sentences", 3)

	var sentences []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(strings.ReplaceAll(para, "\n", " "))
		if para == "" {
			continue
		}
		if ss := splitSentences(para); len(ss) > 0 {
			sentences = append(sentences, ss[0])
		}
		if len(sentences) >= max {
			break
		}
	}
	summary := strings.Join(sentences, " ")

	outPath := t.path("summary.txt")
	if err := os.WriteFile(outPath, []byte(summary+"\n"), 0o644); err != nil {
		return task.Outputs{}, fmt.Errorf("summarize: write summary: %w", err)
	}

	out := task.NewOutputs()
	out.AddFile("summary_file", outPath)
	out.AddData("summary", summary)
	return out, nil
}

// splitSentences splits on '.', '!' or '?' followed by a space or the end
// of the text. A trailing fragment without terminal punctuation counts as a
// sentence.
func splitSentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i+1 == len(s) || s[i+1] == ' ' {
				if sent := strings.TrimSpace(s[start : i+1]); sent != "" {
					out = append(out, sent)
				}
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
