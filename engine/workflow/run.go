package workflow

import (
	"context"
	"time"

	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/registry"
	"github.com/flowmesh/flowmesh/engine/scheduler"
	"github.com/flowmesh/flowmesh/engine/task"
	"github.com/flowmesh/flowmesh/pkg/logger"
	"github.com/flowmesh/flowmesh/pkg/placeholder"
)

// TaskSummary is the per-task slice of the result envelope.
type TaskSummary struct {
	State    core.StatusType `json:"state"`
	Attempts int             `json:"attempts"`
	Start    time.Time       `json:"start,omitzero"`
	End      time.Time       `json:"end,omitzero"`
	Error    string          `json:"error,omitempty"`
}

// Result is the envelope returned by a run: the resolved output template and
// the terminal state of every task.
type Result struct {
	Output any                    `json:"output"`
	Tasks  map[string]TaskSummary `json:"tasks"`
}

type RunOptions struct {
	// Overrides are shallow-merged over the input node's data.
	Overrides core.Input
	// MaxInFlight bounds concurrent tasks; zero means unbounded.
	MaxInFlight int
	// Timeout bounds the whole run; zero means none.
	Timeout time.Duration
	// BackoffBase and BackoffCap tune retry backoff; zero keeps defaults.
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// Run executes the workflow against reg. Each run starts from a fresh
// results space; the Config itself is never mutated.
func (w *Config) Run(ctx context.Context, reg *registry.Registry, opts *RunOptions) (*Result, error) {
	if opts == nil {
		opts = &RunOptions{}
	}
	if err := scheduler.Validate(w.Tasks, w.Input.Name, reg); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	data := core.DeepCopy(w.Input.Data)
	if len(opts.Overrides) > 0 {
		data = data.Merge(opts.Overrides)
	}
	started := time.Now()
	seed := map[string]any{
		w.Input.Name: map[string]any{
			"output":   map[string]any(data),
			"status":   core.StatusSuccess.String(),
			"error":    nil,
			"attempts": 0,
			"start":    started,
			"end":      started,
		},
	}

	executor := task.NewExecutor(reg, task.WithBackoff(opts.BackoffBase, opts.BackoffCap))
	sched := scheduler.New(executor, scheduler.WithMaxInFlight(opts.MaxInFlight))
	log.Info("workflow started", "workflow", w.Metadata.Name, "tasks", len(w.Tasks))
	records, results := sched.Run(ctx, w.Tasks, seed)

	res := &Result{
		Output: placeholder.Resolve(w.Output.Data, results),
		Tasks:  make(map[string]TaskSummary, len(records)),
	}
	for name, rec := range records {
		summary := TaskSummary{
			State:    rec.Status,
			Attempts: rec.Attempts,
			Start:    rec.StartTime,
			End:      rec.EndTime,
		}
		if rec.Error != nil {
			summary.Error = rec.Error.Message
		}
		res.Tasks[name] = summary
	}
	log.Info("workflow finished", "workflow", w.Metadata.Name, "duration", time.Since(started))
	return res, nil
}
