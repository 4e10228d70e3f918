// Package runtime is the process-wide entry point: a table of loaded
// workflows plus the shared function registry.
package runtime

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/flowmesh/flowmesh/engine/builtin"
	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/registry"
	"github.com/flowmesh/flowmesh/engine/workflow"
	"github.com/flowmesh/flowmesh/pkg/logger"
)

type Engine struct {
	mu        sync.RWMutex
	workflows map[string]*workflow.Config
	registry  *registry.Registry
}

type Option func(*Engine)

// WithRegistry replaces the default registry (builtins preinstalled) with a
// caller-provided one.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{workflows: make(map[string]*workflow.Config)}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = registry.New()
		builtin.RegisterAll(e.registry)
	}
	return e
}

func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Load stores a workflow under metadata.name, or under name when given.
// Returns the name the workflow is addressable by.
func (e *Engine) Load(cfg *workflow.Config, name string) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("workflow config is nil")
	}
	if name == "" {
		name = cfg.Metadata.Name
	}
	if name == "" {
		return "", fmt.Errorf("workflow has no name: set metadata.name or pass one")
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.workflows[name] = cfg
	return name, nil
}

// LoadYAML parses a workflow document and stores it.
func (e *Engine) LoadYAML(data []byte, name string) (string, error) {
	cfg, err := workflow.Load(data)
	if err != nil {
		return "", err
	}
	return e.Load(cfg, name)
}

// Run executes a loaded workflow by name. Overrides are shallow-merged over
// the workflow's input data for this run only.
func (e *Engine) Run(
	ctx context.Context,
	name string,
	overrides core.Input,
	opts *workflow.RunOptions,
) (*workflow.Result, error) {
	e.mu.RLock()
	cfg, ok := e.workflows[name]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("workflow not found: %s", name)
	}
	var runOpts workflow.RunOptions
	if opts != nil {
		runOpts = *opts
	}
	if len(overrides) > 0 {
		runOpts.Overrides = runOpts.Overrides.Merge(overrides)
	}
	runID := core.MustNewID()
	ctx = logger.ContextWith(ctx, logger.FromContext(ctx).With("run_id", runID.String(), "workflow", name))
	return cfg.Run(ctx, e.registry, &runOpts)
}

// RegisterFunction forwards to the shared registry.
func (e *Engine) RegisterFunction(name string, fn registry.Function) {
	e.registry.Register(name, fn)
}

func (e *Engine) ListWorkflows() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.workflows))
	for name := range e.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) ListFunctions() []string {
	return e.registry.List()
}
