package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh/flowmesh/engine/core"
)

func TestParseInputs(t *testing.T) {
	t.Run("Should parse JSON values and fall back to strings", func(t *testing.T) {
		got, err := parseInputs([]string{"n=3", "flag=true", "name=ada", `list=[1,2]`})
		require.NoError(t, err)
		assert.Equal(t, core.Input{
			"n":    float64(3),
			"flag": true,
			"name": "ada",
			"list": []any{float64(1), float64(2)},
		}, got)
	})

	t.Run("Should return nil for no pairs", func(t *testing.T) {
		got, err := parseInputs(nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Should reject pairs without an equals sign", func(t *testing.T) {
		_, err := parseInputs([]string{"oops"})
		require.Error(t, err)
	})
}

func TestDescribeCmd(t *testing.T) {
	t.Run("Should print nodes and edges for a document", func(t *testing.T) {
		doc := `
metadata: {name: demo}
input: {name: input, data: {x: 1}}
executors:
  - name: a
    func: text_process
    custom_vars: {text: "hi"}
output: {name: out, data: {r: "${a.output}"}}
`
		path := filepath.Join(t.TempDir(), "wf.yaml")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		cmd := DescribeCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{path})
		require.NoError(t, cmd.Execute())
		out := buf.String()
		assert.Contains(t, out, `"name": "a"`)
		assert.Contains(t, out, `"from": "input"`)
	})
}

func TestRunCmd(t *testing.T) {
	t.Run("Should execute an offline workflow end to end", func(t *testing.T) {
		doc := `
metadata: {name: offline}
input: {name: input, data: {text: "abc"}}
executors:
  - name: up
    func: text_process
    custom_vars:
      text: "${input.text}"
      operation: "upper"
output: {name: out, data: {r: "${up.output}"}}
`
		path := filepath.Join(t.TempDir(), "wf.yaml")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		cmd := RunCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{path})
		require.NoError(t, cmd.Execute())
		out := buf.String()
		assert.Contains(t, out, `"ABC"`)
		assert.Contains(t, out, `"SUCCESS"`)
	})
}
