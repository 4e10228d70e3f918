// Package workflow holds the immutable description of one workflow and the
// façade that runs it through the scheduler.
package workflow

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/scheduler"
	"github.com/flowmesh/flowmesh/engine/task"
)

type Metadata struct {
	Version     string `json:"version,omitempty"     yaml:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Name        string `json:"name,omitempty"        yaml:"name,omitempty"`
}

// InputNode binds literal input data into the results space under its name.
type InputNode struct {
	Type string     `json:"type,omitempty" yaml:"type,omitempty"`
	Name string     `json:"name"           yaml:"name"           validate:"required"`
	Data core.Input `json:"data,omitempty" yaml:"data,omitempty"`
}

// OutputNode is the template resolved against the results space once the
// frontier drains.
type OutputNode struct {
	Type string     `json:"type,omitempty" yaml:"type,omitempty"`
	Name string     `json:"name"           yaml:"name"           validate:"required"`
	Data core.Input `json:"data,omitempty" yaml:"data,omitempty"`
}

// Config is the immutable workflow description. A Config may be run any
// number of times; each run works on a fresh results space and concurrent
// runs share nothing mutable.
type Config struct {
	Metadata Metadata      `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Input    InputNode     `json:"input"              yaml:"input"              validate:"required"`
	Tasks    []task.Config `json:"executors"          yaml:"executors"`
	Output   OutputNode    `json:"output"             yaml:"output"             validate:"required"`
}

var validate = validator.New()

// Validate performs structural checks plus the scheduler's graph validation,
// without running anything.
func (w *Config) Validate() error {
	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("invalid workflow: %w", err)
	}
	return scheduler.Validate(w.Tasks, w.Input.Name, nil)
}

// Node is one structural element of the workflow for tooling.
type Node struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Func string `json:"func,omitempty"`
}

// Edge is a dependency pair (From must complete before To).
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Description struct {
	Metadata Metadata `json:"metadata"`
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
}

// Describe returns a read-only structural view: nodes for the input node,
// every task, and the output node, with depends_on edges. Tasks without
// declared dependencies get an implicit edge from the input node, and every
// task gets an edge to the output node.
func (w *Config) Describe() *Description {
	desc := &Description{Metadata: w.Metadata}
	desc.Nodes = append(desc.Nodes, Node{Name: w.Input.Name, Kind: "start"})
	for i := range w.Tasks {
		t := &w.Tasks[i]
		desc.Nodes = append(desc.Nodes, Node{Name: t.Name, Kind: string(t.EffectiveType()), Func: t.Func})
		if len(t.DependsOn) == 0 {
			desc.Edges = append(desc.Edges, Edge{From: w.Input.Name, To: t.Name})
			continue
		}
		for _, dep := range t.DependsOn {
			desc.Edges = append(desc.Edges, Edge{From: dep, To: t.Name})
		}
	}
	desc.Nodes = append(desc.Nodes, Node{Name: w.Output.Name, Kind: "end"})
	for i := range w.Tasks {
		desc.Edges = append(desc.Edges, Edge{From: w.Tasks[i].Name, To: w.Output.Name})
	}
	return desc
}
