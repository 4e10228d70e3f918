package workflow

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/task"
)

// rawTask mirrors the document form of a task spec. Timeout accepts either a
// bare number of seconds or a duration string ("30s", "1 minute").
type rawTask struct {
	Name       string     `yaml:"name"`
	Type       string     `yaml:"type"`
	Func       string     `yaml:"func"`
	CustomVars core.Input `yaml:"custom_vars"`
	DependsOn  []string   `yaml:"depends_on"`
	Timeout    any        `yaml:"timeout"`
	Retry      int        `yaml:"retry"`
}

type rawDocument struct {
	Metadata Metadata   `yaml:"metadata"`
	Input    InputNode  `yaml:"input"`
	Tasks    []rawTask  `yaml:"executors"`
	Output   OutputNode `yaml:"output"`
}

// Load parses a workflow description document. Unknown top-level keys are
// ignored; the parsed Config is validated before being returned.
func Load(data []byte) (*Config, error) {
	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workflow document: %w", err)
	}
	cfg := &Config{
		Metadata: doc.Metadata,
		Input:    doc.Input,
		Output:   doc.Output,
	}
	cfg.Tasks = make([]task.Config, 0, len(doc.Tasks))
	for i := range doc.Tasks {
		raw := &doc.Tasks[i]
		spec := task.Config{
			Name:       raw.Name,
			Type:       task.Type(raw.Type),
			Func:       raw.Func,
			CustomVars: raw.CustomVars,
			DependsOn:  raw.DependsOn,
			Retry:      raw.Retry,
		}
		if raw.Timeout != nil {
			d, ok := core.ParseAnyDuration(raw.Timeout)
			if !ok {
				return nil, fmt.Errorf("task %s: invalid timeout %v", raw.Name, raw.Timeout)
			}
			spec.Timeout = d
		}
		cfg.Tasks = append(cfg.Tasks, spec)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}
	return Load(data)
}
