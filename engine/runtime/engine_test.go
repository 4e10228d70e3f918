package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/task"
	"github.com/flowmesh/flowmesh/engine/workflow"
)

func sampleWorkflow() *workflow.Config {
	return &workflow.Config{
		Metadata: workflow.Metadata{Name: "sample"},
		Input:    workflow.InputNode{Name: "input", Data: core.Input{"x": 3}},
		Tasks: []task.Config{
			{Name: "a", Func: "triple", CustomVars: core.Input{"n": "${input.x}"}},
		},
		Output: workflow.OutputNode{Name: "out", Data: core.Input{"r": "${a.output}"}},
	}
}

func newTestEngine() *Engine {
	eng := New()
	eng.RegisterFunction("triple", func(_ context.Context, params core.Input) (any, error) {
		return params["n"].(int) * 3, nil
	})
	return eng
}

func TestEngine_LoadAndRun(t *testing.T) {
	t.Run("Should run a loaded workflow by metadata name", func(t *testing.T) {
		eng := newTestEngine()
		name, err := eng.Load(sampleWorkflow(), "")
		require.NoError(t, err)
		assert.Equal(t, "sample", name)

		res, err := eng.Run(context.Background(), "sample", nil, nil)
		require.NoError(t, err)
		out := res.Output.(core.Input)
		assert.Equal(t, 9, out["r"])
	})

	t.Run("Should prefer a caller-provided name", func(t *testing.T) {
		eng := newTestEngine()
		name, err := eng.Load(sampleWorkflow(), "renamed")
		require.NoError(t, err)
		assert.Equal(t, "renamed", name)
		assert.Equal(t, []string{"renamed"}, eng.ListWorkflows())
	})

	t.Run("Should reject unnamed workflows", func(t *testing.T) {
		eng := newTestEngine()
		cfg := sampleWorkflow()
		cfg.Metadata.Name = ""
		_, err := eng.Load(cfg, "")
		require.Error(t, err)
	})

	t.Run("Should reject invalid workflows at load time", func(t *testing.T) {
		eng := newTestEngine()
		cfg := sampleWorkflow()
		cfg.Tasks[0].DependsOn = []string{"ghost"}
		_, err := eng.Load(cfg, "")
		require.Error(t, err)
	})

	t.Run("Should error on unknown workflow names", func(t *testing.T) {
		eng := newTestEngine()
		_, err := eng.Run(context.Background(), "nope", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "workflow not found")
	})
}

func TestEngine_Overrides(t *testing.T) {
	t.Run("Should merge per-run overrides over the input data", func(t *testing.T) {
		eng := newTestEngine()
		_, err := eng.Load(sampleWorkflow(), "")
		require.NoError(t, err)
		res, err := eng.Run(context.Background(), "sample", core.Input{"x": 5}, nil)
		require.NoError(t, err)
		out := res.Output.(core.Input)
		assert.Equal(t, 15, out["r"])

		// A later run without overrides sees the original data.
		res, err = eng.Run(context.Background(), "sample", nil, nil)
		require.NoError(t, err)
		out = res.Output.(core.Input)
		assert.Equal(t, 9, out["r"])
	})
}

func TestEngine_LoadYAML(t *testing.T) {
	t.Run("Should load a workflow document", func(t *testing.T) {
		doc := `
metadata:
  name: from-yaml
input:
  name: input
  data:
    x: 1
executors:
  - name: a
    func: triple
    custom_vars:
      n: "${input.x}"
output:
  name: out
  data:
    r: "${a.output}"
`
		eng := newTestEngine()
		name, err := eng.LoadYAML([]byte(doc), "")
		require.NoError(t, err)
		assert.Equal(t, "from-yaml", name)
	})
}

func TestEngine_Builtins(t *testing.T) {
	t.Run("Should preinstall the builtin library", func(t *testing.T) {
		eng := New()
		fns := eng.ListFunctions()
		assert.Contains(t, fns, "llm_api_call")
		assert.Contains(t, fns, "text_process")
		assert.Contains(t, fns, "calculate")
		assert.Contains(t, fns, "data_merge")
	})
}
