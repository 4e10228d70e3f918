package scheduler

import (
	"fmt"
	"sort"

	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/registry"
	"github.com/flowmesh/flowmesh/engine/task"
)

// Validate checks the graph before any task is dispatched: unique names
// (including the input-node name), every depends_on resolving to a known
// task or the input node, and acyclicity. When reg is non-nil, every task
// function must be registered.
func Validate(specs []task.Config, inputName string, reg *registry.Registry) error {
	names := make(map[string]struct{}, len(specs)+1)
	if inputName != "" {
		names[inputName] = struct{}{}
	}
	for i := range specs {
		spec := &specs[i]
		if err := spec.Validate(); err != nil {
			return err
		}
		if _, dup := names[spec.Name]; dup {
			return core.Errorf(core.ErrCodeDuplicateTask, "duplicate task name: %s", spec.Name)
		}
		names[spec.Name] = struct{}{}
	}
	for i := range specs {
		spec := &specs[i]
		for _, dep := range spec.DependsOn {
			if _, ok := names[dep]; !ok {
				return core.Errorf(core.ErrCodeUnknownDep, "task %s depends on unknown task: %s", spec.Name, dep)
			}
		}
		if reg != nil && spec.EffectiveType() == task.TypeTask && !reg.Has(spec.Func) {
			return core.Errorf(core.ErrCodeUnknownFunction, "task %s uses unregistered function: %s", spec.Name, spec.Func)
		}
	}
	if cycle := findCycle(specs, inputName); len(cycle) > 0 {
		return core.Errorf(core.ErrCodeCycleDetected, "dependency cycle: %s", joinCycle(cycle))
	}
	return nil
}

// findCycle runs Kahn's algorithm over the depends_on graph. An empty return
// means the graph is acyclic; otherwise one offending cycle is extracted from
// the unresolvable remainder.
func findCycle(specs []task.Config, inputName string) []string {
	indegree := make(map[string]int, len(specs))
	dependents := make(map[string][]string, len(specs))
	deps := make(map[string][]string, len(specs))
	for i := range specs {
		spec := &specs[i]
		indegree[spec.Name] = 0
		deps[spec.Name] = nil
	}
	for i := range specs {
		spec := &specs[i]
		for _, dep := range spec.DependsOn {
			if dep == inputName {
				continue
			}
			indegree[spec.Name]++
			dependents[dep] = append(dependents[dep], spec.Name)
			deps[spec.Name] = append(deps[spec.Name], dep)
		}
	}
	queue := make([]string, 0, len(indegree))
	for name, deg := range indegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	resolved := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		resolved++
		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if resolved == len(indegree) {
		return nil
	}

	// Walk the unresolved remainder until a node repeats; the repeat closes
	// one concrete cycle to report.
	remainder := make(map[string]bool)
	for name, deg := range indegree {
		if deg > 0 {
			remainder[name] = true
		}
	}
	start := ""
	for name := range remainder {
		if start == "" || name < start {
			start = name
		}
	}
	seen := make(map[string]int)
	var path []string
	current := start
	for {
		if idx, ok := seen[current]; ok {
			return append(path[idx:], current)
		}
		seen[current] = len(path)
		path = append(path, current)
		next := ""
		candidates := deps[current]
		sort.Strings(candidates)
		for _, dep := range candidates {
			if remainder[dep] {
				next = dep
				break
			}
		}
		if next == "" {
			return path
		}
		current = next
	}
}

func joinCycle(cycle []string) string {
	out := ""
	for i, name := range cycle {
		if i > 0 {
			out += " -> "
		}
		out += name
	}
	return fmt.Sprintf("[%s]", out)
}
