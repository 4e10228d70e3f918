package core

import "github.com/mohae/deepcopy"

// DeepCopy returns a deep copy of src. It has special handling for Input and
// Output (and their pointer forms) so a copied tree keeps its concrete type.
func DeepCopy[T any](src T) T {
	switch v := any(src).(type) {
	case nil:
		return src
	case Input:
		if v == nil {
			return src
		}
		copied := deepcopy.Copy(map[string]any(v)).(map[string]any)
		return any(Input(copied)).(T)
	case Output:
		if v == nil {
			return src
		}
		copied := deepcopy.Copy(map[string]any(v)).(map[string]any)
		return any(Output(copied)).(T)
	case *Input:
		if v == nil {
			return src
		}
		copied := Input(deepcopy.Copy(map[string]any(*v)).(map[string]any))
		return any(&copied).(T)
	case *Output:
		if v == nil {
			return src
		}
		copied := Output(deepcopy.Copy(map[string]any(*v)).(map[string]any))
		return any(&copied).(T)
	default:
		return deepcopy.Copy(src).(T)
	}
}
