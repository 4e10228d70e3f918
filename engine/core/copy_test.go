package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepCopy(t *testing.T) {
	t.Run("Should copy nested Input without aliasing", func(t *testing.T) {
		src := Input{
			"a": map[string]any{"b": []any{1, 2}},
		}
		dst := DeepCopy(src)
		dst["a"].(map[string]any)["b"].([]any)[0] = 99
		assert.Equal(t, 1, src["a"].(map[string]any)["b"].([]any)[0])
	})

	t.Run("Should keep concrete Input type", func(t *testing.T) {
		src := Input{"k": "v"}
		dst := DeepCopy(src)
		require.IsType(t, Input{}, dst)
		assert.Equal(t, src, dst)
	})

	t.Run("Should handle nil Input", func(t *testing.T) {
		var src Input
		assert.Nil(t, DeepCopy(src))
	})

	t.Run("Should copy pointer forms", func(t *testing.T) {
		src := &Output{"k": "v"}
		dst := DeepCopy(src)
		require.NotSame(t, src, dst)
		assert.Equal(t, *src, *dst)
	})
}

func TestInputMerge(t *testing.T) {
	t.Run("Should shallow-merge with override keys winning", func(t *testing.T) {
		base := Input{"a": 1, "b": 2}
		merged := base.Merge(Input{"b": 3, "c": 4})
		assert.Equal(t, Input{"a": 1, "b": 3, "c": 4}, merged)
		assert.Equal(t, Input{"a": 1, "b": 2}, base)
	})

	t.Run("Should handle nil receiver", func(t *testing.T) {
		var base Input
		merged := base.Merge(Input{"a": 1})
		assert.Equal(t, Input{"a": 1}, merged)
	})
}

func TestID(t *testing.T) {
	t.Run("Should generate parseable ids", func(t *testing.T) {
		id := MustNewID()
		require.False(t, id.IsZero())
		parsed, err := ParseID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("Should reject malformed ids", func(t *testing.T) {
		_, err := ParseID("not-a-valid-ksuid")
		require.Error(t, err)
	})
}

func TestStatusType(t *testing.T) {
	t.Run("Should mark only terminal states terminal", func(t *testing.T) {
		for _, s := range []StatusType{StatusSuccess, StatusFailed, StatusTimedOut, StatusCanceled} {
			assert.True(t, s.IsTerminal(), s)
		}
		for _, s := range []StatusType{StatusPending, StatusReady, StatusRunning} {
			assert.False(t, s.IsTerminal(), s)
		}
	})
}
