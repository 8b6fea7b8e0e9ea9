package texttasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pipewright/pipewright/task"
)

// AnalyzeTask computes word statistics over normalized text.
//
// Inputs: files["text"] or data["text"]; data["top_words"] caps the
// frequency list (default 10). Outputs: data["stats"] with word_count,
// line_count, unique_words and top_words.
type AnalyzeTask struct{}

// NewAnalyze is the task.Factory for AnalyzeTask.
func NewAnalyze() task.Task { return &AnalyzeTask{} }

func (t *AnalyzeTask) Metadata() task.Metadata {
	return task.Metadata{
		TaskID:            "analyze",
		Name:              "Text Analysis",
		Description:       "Compute word, line and frequency statistics for a text",
		Version:           "1.0.0",
		InputKinds:        []task.Kind{KindText},
		OutputKinds:       []task.Kind{KindStats},
		EstimatedDuration: time.Second,
	}
}

func (t *AnalyzeTask) Execute(ctx context.Context, in task.Inputs) (task.Outputs, error) {
	text, err := readText(in)
	if err != nil {
		return task.Outputs{}, fmt.Errorf("analyze: %w", err)
	}
	topN := intParam(in, "top_words", 10)

	words := tokenize(text)
	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[w]++
	}

	out := task.NewOutputs()
	out.AddData("stats", map[string]interface{}{
		"word_count":   len(words),
		"line_count":   countLines(text),
		"unique_words": len(freq),
		"top_words":    topWords(freq, topN),
	})
	return out, nil
}

// WordCount is one entry in the stats top_words list.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// tokenize lowercases and splits text into words, trimming surrounding
// punctuation.
func tokenize(text string) []string {
	var words []string
	for _, f := range strings.Fields(text) {
		w := strings.ToLower(strings.Trim(f, ".,;:!?\"'()[]{}"))
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// topWords returns the n most frequent words, ties broken alphabetically.
func topWords(freq map[string]int, n int) []WordCount {
	list := make([]WordCount, 0, len(freq))
	for w, c := range freq {
		list = append(list, WordCount{Word: w, Count: c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Word < list[j].Word
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Split(strings.TrimRight(text, "\n"), "\n"))
}
