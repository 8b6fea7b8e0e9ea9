package texttasks

import (
	"errors"
	"fmt"
	"os"

	"github.com/pipewright/pipewright/task"
)

// readText returns the text input, preferring the file entry over inline
// data.
func readText(in task.Inputs) (string, error) {
	if path, ok := in.GetFile("text"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text %s: %w", path, err)
		}
		return string(data), nil
	}
	if v, ok := in.GetData("text"); ok {
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("text input must be a string, got %T", v)
		}
		return s, nil
	}
	return "", errors.New("no text input available")
}

// intParam reads an integer parameter from the data inputs, accepting the
// numeric types literals arrive as from Go code, YAML and JSON.
func intParam(in task.Inputs, key string, def int) int {
	v, ok := in.GetData(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}
