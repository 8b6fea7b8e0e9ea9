package texttasks

import (
	"fmt"
	"os"
	"path/filepath"
)

// scratchDir is a task's temporary working directory. Files written there
// are copied into the run directory by the executor before Cleanup removes
// the scratch space.
type scratchDir struct {
	dir string
}

func (s *scratchDir) create(prefix string) error {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	s.dir = dir
	return nil
}

func (s *scratchDir) remove() error {
	if s.dir == "" {
		return nil
	}
	return os.RemoveAll(s.dir)
}

func (s *scratchDir) path(name string) string { return filepath.Join(s.dir, name) }
