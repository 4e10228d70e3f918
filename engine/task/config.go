package task

import (
	"fmt"
	"time"

	"github.com/flowmesh/flowmesh/engine/core"
)

type Type string

const (
	TypeTask  Type = "task"
	TypeStart Type = "start"
	TypeEnd   Type = "end"
)

const (
	// DefaultTimeout bounds a single invocation when the spec does not set one.
	DefaultTimeout = 30 * time.Second
	// DefaultRetry is the number of additional attempts after the first failure.
	DefaultRetry = 0
)

// Config is the declarative description of one task node.
//
// **Fields**:
// - **Name**: unique identifier within the workflow
// - **Func**: name of a registered function
// - **CustomVars**: parameter templates, resolved against the results map at dispatch
// - **DependsOn**: tasks that must reach SUCCESS before this one becomes ready
type Config struct {
	Name       string        `json:"name"                  yaml:"name"                  validate:"required"`
	Type       Type          `json:"type,omitempty"        yaml:"type,omitempty"`
	Func       string        `json:"func,omitempty"        yaml:"func,omitempty"`
	CustomVars core.Input    `json:"custom_vars,omitempty" yaml:"custom_vars,omitempty"`
	DependsOn  []string      `json:"depends_on,omitempty"  yaml:"depends_on,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"     yaml:"-"`
	Retry      int           `json:"retry,omitempty"       yaml:"retry,omitempty"`
}

// EffectiveTimeout returns the per-invocation deadline, falling back to the
// default when unset.
func (c *Config) EffectiveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Config) EffectiveType() Type {
	if c.Type == "" {
		return TypeTask
	}
	return c.Type
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("task name is required")
	}
	switch c.EffectiveType() {
	case TypeTask, TypeStart, TypeEnd:
	default:
		return fmt.Errorf("task %s: unknown type %q", c.Name, c.Type)
	}
	if c.EffectiveType() == TypeTask && c.Func == "" {
		return fmt.Errorf("task %s: func is required", c.Name)
	}
	if c.Retry < 0 {
		return fmt.Errorf("task %s: retry must be >= 0", c.Name)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("task %s: timeout must be >= 0", c.Name)
	}
	return nil
}
