package core

import "maps"

// Input is a parameter bag handed to a task function after placeholder
// resolution. Keys are chosen by the workflow author; values are any
// YAML/JSON-representable tree.
type Input map[string]any

// Output is the value space a task contributes to the results map.
type Output map[string]any

func (i Input) Clone() Input {
	if i == nil {
		return nil
	}
	out := make(Input, len(i))
	maps.Copy(out, i)
	return out
}

// Merge overlays other on top of i, returning a new Input. Shallow: top-level
// keys from other win.
func (i Input) Merge(other Input) Input {
	out := i.Clone()
	if out == nil {
		out = make(Input, len(other))
	}
	maps.Copy(out, other)
	return out
}
