package templates

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/pipewright/pipewright/pipeline"
)

// ParseConfig parses YAML bytes into a single pipeline config. Input values
// follow the "$" convention: "$key" references an earlier output, anything
// else is a literal.
func ParseConfig(data []byte) (*pipeline.Config, error) {
	var cfg pipeline.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline config: %w", err)
	}
	return &cfg, nil
}

// ConfigSet is the root structure for a file that defines multiple
// pipelines. The top-level key is "pipelines"; each value is one pipeline.
type ConfigSet struct {
	Pipelines map[string]pipeline.Config `yaml:"pipelines"`
}

// ParseConfigSet parses YAML bytes containing a "pipelines" map from name
// to pipeline config. Example:
//
//	pipelines:
//	  nightly:
//	    description: nightly text report
//	    tasks:
//	      - task_id: ingest
//	      - task_id: report
//	        inputs:
//	          heading: $title
func ParseConfigSet(data []byte) (*ConfigSet, error) {
	var set ConfigSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse pipeline config set: %w", err)
	}
	return &set, nil
}

// LoadFile parses a "pipelines" YAML file and registers every pipeline in
// it as a template, in name order. A pipeline whose config omits "name"
// takes its map key as the name.
func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	set, err := ParseConfigSet(data)
	if err != nil {
		return fmt.Errorf("load templates %s: %w", path, err)
	}

	names := make([]string, 0, len(set.Pipelines))
	for name := range set.Pipelines {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := set.Pipelines[name]
		if cfg.Name == "" {
			cfg.Name = name
		}
		if err := l.Register(name, staticBuilder(cfg)); err != nil {
			return fmt.Errorf("load templates %s: %w", path, err)
		}
	}
	l.logger.Info("loaded pipeline templates", "path", path, "count", len(names))
	return nil
}

// staticBuilder returns cfg as-is on every call; Get and Build clone it.
func staticBuilder(cfg pipeline.Config) Builder {
	return func() pipeline.Config { return cfg }
}
