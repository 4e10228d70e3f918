package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/registry"
	"github.com/flowmesh/flowmesh/engine/task"
)

func seedWith(data map[string]any) map[string]any {
	return map[string]any{
		"input": map[string]any{
			"output": data,
			"status": core.StatusSuccess.String(),
		},
	}
}

func newScheduler(reg *registry.Registry, opts ...Option) *Scheduler {
	executor := task.NewExecutor(reg, task.WithBackoff(time.Millisecond, 2*time.Millisecond), task.WithJitter(0))
	return New(executor, opts...)
}

func TestScheduler_Diamond(t *testing.T) {
	t.Run("Should run branches in parallel and join deterministically", func(t *testing.T) {
		reg := registry.New()
		reg.Register("double", func(_ context.Context, params core.Input) (any, error) {
			time.Sleep(100 * time.Millisecond)
			switch n := params["n"].(type) {
			case int:
				return n * 2, nil
			case float64:
				return n * 2, nil
			}
			return nil, errors.New("n must be a number")
		})
		reg.Register("sum", func(_ context.Context, params core.Input) (any, error) {
			return params["x"].(int) + params["y"].(int), nil
		})
		specs := []task.Config{
			{Name: "a", Func: "double", CustomVars: core.Input{"n": "${input.output.x}"}},
			{Name: "b", Func: "double", DependsOn: []string{"a"}, CustomVars: core.Input{"n": "${a.output}"}},
			{Name: "c", Func: "double", DependsOn: []string{"a"}, CustomVars: core.Input{"n": "${a.output}"}},
			{Name: "d", Func: "sum", DependsOn: []string{"b", "c"}, CustomVars: core.Input{"x": "${b.output}", "y": "${c.output}"}},
		}
		require.NoError(t, Validate(specs, "input", reg))

		records, results := newScheduler(reg).Run(context.Background(), specs, seedWith(map[string]any{"x": 1}))
		for _, name := range []string{"a", "b", "c", "d"} {
			require.Equal(t, core.StatusSuccess, records[name].Status, name)
		}
		assert.Equal(t, 8, records["d"].Output)

		// b and c both start after a ends and overlap with each other.
		assert.True(t, records["b"].StartTime.After(records["a"].EndTime.Add(-time.Millisecond)))
		assert.True(t, records["c"].StartTime.After(records["a"].EndTime.Add(-time.Millisecond)))
		assert.True(t, records["b"].StartTime.Before(records["d"].StartTime))
		assert.True(t, records["c"].StartTime.Before(records["d"].StartTime))
		assert.True(t, records["b"].StartTime.Before(records["c"].EndTime))
		assert.True(t, records["c"].StartTime.Before(records["b"].EndTime))

		rec, ok := results["d"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 8, rec["output"])
	})
}

func TestScheduler_ParallelismFloor(t *testing.T) {
	t.Run("Should overlap a full frontier", func(t *testing.T) {
		var running, peak atomic.Int32
		reg := registry.New()
		reg.Register("sleep", func(_ context.Context, _ core.Input) (any, error) {
			now := running.Add(1)
			for {
				old := peak.Load()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}
			time.Sleep(100 * time.Millisecond)
			running.Add(-1)
			return nil, nil
		})
		specs := []task.Config{
			{Name: "t1", Func: "sleep"},
			{Name: "t2", Func: "sleep"},
			{Name: "t3", Func: "sleep"},
			{Name: "t4", Func: "sleep"},
		}
		newScheduler(reg).Run(context.Background(), specs, seedWith(nil))
		assert.GreaterOrEqual(t, peak.Load(), int32(4))
	})

	t.Run("Should respect the in-flight bound", func(t *testing.T) {
		var running, peak atomic.Int32
		var mu sync.Mutex
		reg := registry.New()
		reg.Register("sleep", func(_ context.Context, _ core.Input) (any, error) {
			mu.Lock()
			now := running.Add(1)
			if now > peak.Load() {
				peak.Store(now)
			}
			mu.Unlock()
			time.Sleep(50 * time.Millisecond)
			running.Add(-1)
			return nil, nil
		})
		specs := []task.Config{
			{Name: "t1", Func: "sleep"},
			{Name: "t2", Func: "sleep"},
			{Name: "t3", Func: "sleep"},
			{Name: "t4", Func: "sleep"},
			{Name: "t5", Func: "sleep"},
		}
		records, _ := newScheduler(reg, WithMaxInFlight(2)).Run(context.Background(), specs, seedWith(nil))
		assert.LessOrEqual(t, peak.Load(), int32(2))
		for name, rec := range records {
			assert.Equal(t, core.StatusSuccess, rec.Status, name)
		}
	})
}

func TestScheduler_DownstreamCancellation(t *testing.T) {
	t.Run("Should cancel exactly the transitive successors of a failure", func(t *testing.T) {
		reg := registry.New()
		reg.Register("fail", func(_ context.Context, _ core.Input) (any, error) {
			return nil, errors.New("boom")
		})
		reg.Register("ok", func(_ context.Context, _ core.Input) (any, error) {
			return "fine", nil
		})
		specs := []task.Config{
			{Name: "a", Func: "fail"},
			{Name: "b", Func: "ok", DependsOn: []string{"a"}},
			{Name: "c", Func: "ok", DependsOn: []string{"b"}},
			{Name: "free", Func: "ok"},
		}
		records, results := newScheduler(reg).Run(context.Background(), specs, seedWith(nil))
		assert.Equal(t, core.StatusFailed, records["a"].Status)
		assert.Equal(t, core.StatusCanceled, records["b"].Status)
		assert.Equal(t, core.StatusCanceled, records["c"].Status)
		assert.Equal(t, core.StatusSuccess, records["free"].Status)

		_, aInResults := results["a"]
		assert.False(t, aInResults, "failed task must not enter the results space")
	})
}

func TestScheduler_RunCancellation(t *testing.T) {
	t.Run("Should drain in-flight tasks and cancel the rest", func(t *testing.T) {
		reg := registry.New()
		reg.Register("wait", func(ctx context.Context, _ core.Input) (any, error) {
			select {
			case <-time.After(5 * time.Second):
				return "done", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})
		specs := []task.Config{
			{Name: "a", Func: "wait"},
			{Name: "b", Func: "wait", DependsOn: []string{"a"}},
		}
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()
		started := time.Now()
		records, _ := newScheduler(reg).Run(ctx, specs, seedWith(nil))
		assert.Less(t, time.Since(started), 2*time.Second)
		assert.Equal(t, core.StatusCanceled, records["a"].Status)
		assert.Equal(t, core.StatusCanceled, records["b"].Status)
	})
}

func TestScheduler_NoUndeclaredSiblingReads(t *testing.T) {
	t.Run("Should resolve undeclared sibling references to literal text", func(t *testing.T) {
		var got atomic.Value
		reg := registry.New()
		reg.Register("fast", func(_ context.Context, _ core.Input) (any, error) {
			return "early", nil
		})
		reg.Register("slowgate", func(_ context.Context, _ core.Input) (any, error) {
			time.Sleep(150 * time.Millisecond)
			return "gate", nil
		})
		reg.Register("peek", func(_ context.Context, params core.Input) (any, error) {
			got.Store(params["stolen"])
			return nil, nil
		})
		specs := []task.Config{
			{Name: "fast", Func: "fast"},
			// fast completes long before peek dispatches, but peek does not
			// depend on it, so the reference must stay literal.
			{Name: "gate", Func: "slowgate"},
			{Name: "peek", Func: "peek", DependsOn: []string{"gate"}, CustomVars: core.Input{"stolen": "${fast.output}"}},
		}
		records, _ := newScheduler(reg).Run(context.Background(), specs, seedWith(nil))
		require.Equal(t, core.StatusSuccess, records["peek"].Status)
		assert.Equal(t, "${fast.output}", got.Load())
	})
}

func TestScheduler_NonTaskSpecs(t *testing.T) {
	t.Run("Should complete marker nodes without dispatching them", func(t *testing.T) {
		reg := registry.New()
		reg.Register("ok", func(_ context.Context, _ core.Input) (any, error) {
			return "v", nil
		})
		specs := []task.Config{
			{Name: "marker", Type: task.TypeStart},
			{Name: "a", Func: "ok", DependsOn: []string{"marker"}},
		}
		records, _ := newScheduler(reg).Run(context.Background(), specs, seedWith(nil))
		assert.Equal(t, core.StatusSuccess, records["marker"].Status)
		assert.Equal(t, core.StatusSuccess, records["a"].Status)
	})
}
