package task

import (
	"sync"
	"time"

	"github.com/flowmesh/flowmesh/engine/core"
)

// Record tracks one task through a single run: state, timestamps, attempt
// count, last error, and the return value on success. Terminal states are
// sticky; a transition attempted after one is a no-op.
type Record struct {
	mu sync.Mutex

	Spec      Config
	Status    core.StatusType
	StartTime time.Time
	EndTime   time.Time
	Attempts  int
	Output    any
	Error     *core.Error
}

func NewRecord(spec Config) *Record {
	return &Record{Spec: spec, Status: core.StatusPending}
}

func (r *Record) transition(to core.StatusType, f func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status.IsTerminal() {
		return false
	}
	r.Status = to
	if f != nil {
		f()
	}
	return true
}

func (r *Record) MarkReady() bool {
	return r.transition(core.StatusReady, nil)
}

func (r *Record) MarkRunning() bool {
	return r.transition(core.StatusRunning, func() {
		r.StartTime = time.Now()
		r.Error = nil
	})
}

func (r *Record) MarkSuccess(output any) bool {
	return r.transition(core.StatusSuccess, func() {
		r.Output = output
		r.EndTime = time.Now()
	})
}

func (r *Record) MarkFailed(err *core.Error) bool {
	return r.transition(core.StatusFailed, func() {
		r.Error = err
		r.EndTime = time.Now()
	})
}

func (r *Record) MarkTimedOut(err *core.Error) bool {
	return r.transition(core.StatusTimedOut, func() {
		r.Error = err
		r.EndTime = time.Now()
	})
}

func (r *Record) MarkCanceled() bool {
	return r.transition(core.StatusCanceled, func() {
		if r.Error == nil {
			r.Error = core.Errorf(core.ErrCodeCanceled, "task %s canceled", r.Spec.Name)
		}
		r.EndTime = time.Now()
	})
}

func (r *Record) IncAttempts() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attempts++
}

func (r *Record) GetStatus() core.StatusType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Status
}

// AsMap renders the record into the results space. Every field here is
// addressable through ${name.field} references.
func (r *Record) AsMap() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := map[string]any{
		"output":   r.Output,
		"status":   r.Status.String(),
		"attempts": r.Attempts,
		"start":    r.StartTime,
		"end":      r.EndTime,
	}
	if r.Error != nil {
		m["error"] = r.Error.Message
	} else {
		m["error"] = nil
	}
	return m
}
