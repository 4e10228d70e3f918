package task

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/registry"
	"github.com/flowmesh/flowmesh/pkg/logger"
)

const (
	defaultBackoffBase = 100 * time.Millisecond
	defaultBackoffCap  = 5 * time.Second
	defaultJitter      = 50 * time.Millisecond
)

// Executor runs a single task invocation under its per-attempt deadline with
// bounded retry. All outcomes are expressed through the task record; Execute
// never propagates an error upward.
type Executor struct {
	registry    *registry.Registry
	backoffBase time.Duration
	backoffCap  time.Duration
	jitter      time.Duration
}

type ExecutorOption func(*Executor)

func WithBackoff(base, cap time.Duration) ExecutorOption {
	return func(e *Executor) {
		if base > 0 {
			e.backoffBase = base
		}
		if cap > 0 {
			e.backoffCap = cap
		}
	}
}

func WithJitter(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.jitter = d
	}
}

func NewExecutor(reg *registry.Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry:    reg,
		backoffBase: defaultBackoffBase,
		backoffCap:  defaultBackoffCap,
		jitter:      defaultJitter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type attemptResult struct {
	output any
	err    error
}

// Execute drives rec to a terminal state. Each attempt runs under a deadline
// of the spec's timeout; failed attempts repeat up to retry times with
// exponential backoff. External cancellation abandons the current attempt and
// marks the record CANCELED.
func (e *Executor) Execute(ctx context.Context, rec *Record, params core.Input) {
	log := logger.FromContext(ctx)
	name := rec.Spec.Name

	fn, err := e.registry.Lookup(rec.Spec.Func)
	if err != nil {
		rec.MarkFailed(core.NewError(err, core.ErrCodeUnknownFunction, map[string]any{"task": name}))
		return
	}
	if !rec.MarkRunning() {
		return
	}

	timeout := rec.Spec.EffectiveTimeout()
	backoff := retry.NewExponential(e.backoffBase)
	backoff = retry.WithCappedDuration(e.backoffCap, backoff)
	if e.jitter > 0 {
		backoff = retry.WithJitter(e.jitter, backoff)
	}
	backoff = retry.WithMaxRetries(uint64(rec.Spec.Retry), backoff) // #nosec G115 -- retry validated non-negative

	var output any
	var lastErr error
	var timedOut bool
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		rec.IncAttempts()
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		ch := make(chan attemptResult, 1)
		go func() {
			out, callErr := fn(attemptCtx, params)
			ch <- attemptResult{output: out, err: callErr}
		}()

		var callErr error
		select {
		case res := <-ch:
			if res.err == nil {
				output = res.output
				return nil
			}
			callErr = res.err
		case <-attemptCtx.Done():
			// Attempt abandoned; the function's eventual return is discarded.
			callErr = attemptCtx.Err()
		}
		lastErr = callErr

		if ctx.Err() != nil {
			// Parent cancellation or workflow deadline: no more attempts.
			return callErr
		}
		timedOut = errors.Is(callErr, context.DeadlineExceeded)
		log.Debug("task attempt failed", "task", name, "attempt", rec.Attempts, "error", callErr)
		return retry.RetryableError(callErr)
	})
	if err == nil {
		rec.MarkSuccess(output)
		return
	}
	if ctx.Err() != nil {
		rec.MarkCanceled()
		return
	}
	if lastErr != nil {
		err = lastErr
	}
	details := map[string]any{"task": name, "attempts": rec.Attempts}
	if timedOut {
		rec.MarkTimedOut(core.NewError(err, core.ErrCodeTaskTimeout, details))
		return
	}
	rec.MarkFailed(core.NewError(err, core.ErrCodeTaskFailed, details))
}
