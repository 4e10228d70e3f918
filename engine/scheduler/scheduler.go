// Package scheduler owns execution of a whole workflow graph: it validates
// the dependency structure, dispatches every ready task concurrently, and
// folds completions back into the results space.
package scheduler

import (
	"context"
	"maps"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/task"
	"github.com/flowmesh/flowmesh/pkg/logger"
	"github.com/flowmesh/flowmesh/pkg/placeholder"
)

type Scheduler struct {
	executor    *task.Executor
	maxInFlight int64
}

type Option func(*Scheduler)

// WithMaxInFlight bounds concurrent task dispatch. Zero or negative means
// unbounded.
func WithMaxInFlight(n int) Option {
	return func(s *Scheduler) {
		s.maxInFlight = int64(n)
	}
}

func New(executor *task.Executor, opts ...Option) *Scheduler {
	s := &Scheduler{executor: executor}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes specs against a results space seeded with the input-node
// record. It returns the per-task records and the final results space.
// Task-level failures never surface as errors here; they are drained through
// downstream cancellation and reported on the records.
func (s *Scheduler) Run(
	ctx context.Context,
	specs []task.Config,
	seed map[string]any,
) (map[string]*task.Record, map[string]any) {
	log := logger.FromContext(ctx)

	var mu sync.Mutex
	results := make(map[string]any, len(seed)+len(specs))
	maps.Copy(results, seed)

	records := make(map[string]*task.Record, len(specs))
	pending := make(map[string]*task.Config, len(specs))
	completed := make(map[string]struct{}, len(specs)+len(seed))
	for name := range seed {
		completed[name] = struct{}{}
	}
	for i := range specs {
		spec := &specs[i]
		records[spec.Name] = task.NewRecord(*spec)
		if spec.EffectiveType() != task.TypeTask {
			// Start/end markers inside the executor list are not dispatched;
			// they complete immediately so dependents are not starved.
			records[spec.Name].MarkSuccess(nil)
			mu.Lock()
			results[spec.Name] = records[spec.Name].AsMap()
			mu.Unlock()
			completed[spec.Name] = struct{}{}
			continue
		}
		pending[spec.Name] = spec
	}

	closures := dependencyClosures(specs, seed)

	var sem *semaphore.Weighted
	if s.maxInFlight > 0 {
		sem = semaphore.NewWeighted(s.maxInFlight)
	}

	compCh := make(chan *task.Record)
	inFlight := 0

	dispatch := func(spec *task.Config) {
		rec := records[spec.Name]
		rec.MarkReady()
		delete(pending, spec.Name)
		inFlight++

		// Snapshot the slice of the results space this task is allowed to
		// observe: its transitive dependencies plus the seed records. A
		// reference outside that slice resolves to its literal text.
		mu.Lock()
		visible := make(map[string]any, len(closures[spec.Name]))
		for name := range closures[spec.Name] {
			if v, ok := results[name]; ok {
				visible[name] = v
			}
		}
		mu.Unlock()

		go func() {
			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					rec.MarkCanceled()
					compCh <- rec
					return
				}
				defer sem.Release(1)
			}
			params, _ := placeholder.Resolve(spec.CustomVars, visible).(core.Input)
			s.executor.Execute(ctx, rec, params)
			compCh <- rec
		}()
	}

	dispatchFrontier := func() {
		for _, spec := range pending {
			ready := true
			for _, dep := range spec.DependsOn {
				if _, ok := completed[dep]; !ok {
					ready = false
					break
				}
			}
			if ready {
				dispatch(spec)
			}
		}
	}

	cancelPending := func() {
		for name := range pending {
			records[name].MarkCanceled()
			delete(pending, name)
		}
	}

	dispatchFrontier()
	for inFlight > 0 {
		select {
		case rec := <-compCh:
			inFlight--
			status := rec.GetStatus()
			log.Debug("task completed", "task", rec.Spec.Name, "status", status)
			if status.IsSuccess() {
				mu.Lock()
				results[rec.Spec.Name] = rec.AsMap()
				mu.Unlock()
				completed[rec.Spec.Name] = struct{}{}
				dispatchFrontier()
			}
		case <-ctx.Done():
			cancelPending()
			for inFlight > 0 {
				rec := <-compCh
				inFlight--
				if rec.GetStatus().IsSuccess() {
					mu.Lock()
					results[rec.Spec.Name] = rec.AsMap()
					mu.Unlock()
				}
			}
		}
	}
	// Whatever is still pending has an upstream that did not succeed.
	cancelPending()

	return records, results
}

// dependencyClosures computes, per task, the transitive depends_on set plus
// every seed name. Only names in a task's closure are visible to its
// placeholder resolution.
func dependencyClosures(specs []task.Config, seed map[string]any) map[string]map[string]struct{} {
	byName := make(map[string]*task.Config, len(specs))
	for i := range specs {
		byName[specs[i].Name] = &specs[i]
	}
	closures := make(map[string]map[string]struct{}, len(specs))
	var visit func(name string, into map[string]struct{})
	visit = func(name string, into map[string]struct{}) {
		spec, ok := byName[name]
		if !ok {
			return
		}
		for _, dep := range spec.DependsOn {
			if _, seen := into[dep]; seen {
				continue
			}
			into[dep] = struct{}{}
			visit(dep, into)
		}
	}
	for i := range specs {
		spec := &specs[i]
		closure := make(map[string]struct{})
		for name := range seed {
			closure[name] = struct{}{}
		}
		visit(spec.Name, closure)
		closures[spec.Name] = closure
	}
	return closures
}
