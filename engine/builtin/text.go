package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flowmesh/flowmesh/engine/core"
)

// TextProcess applies a named string operation to the text parameter.
func TextProcess(_ context.Context, params core.Input) (any, error) {
	text, err := stringParam(params, "text")
	if err != nil {
		return nil, err
	}
	operation := stringParamDefault(params, "operation", "upper")
	switch operation {
	case "upper":
		return strings.ToUpper(text), nil
	case "lower":
		return strings.ToLower(text), nil
	case "trim":
		return strings.TrimSpace(text), nil
	case "reverse":
		runes := []rune(text)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes), nil
	case "length":
		return len([]rune(text)), nil
	default:
		return nil, fmt.Errorf("unknown text operation: %s", operation)
	}
}

// StringToJSON parses the text parameter as a JSON document.
func StringToJSON(_ context.Context, params core.Input) (any, error) {
	text, err := stringParam(params, "text")
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return out, nil
}

// JSONToString renders the value parameter as compact JSON.
func JSONToString(_ context.Context, params core.Input) (any, error) {
	v, ok := params["value"]
	if !ok {
		return nil, fmt.Errorf("missing parameter: value")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value not serializable: %w", err)
	}
	return string(b), nil
}

// DataMerge folds every parameter into one mapping. Mapping values are
// merged key-by-key; anything else lands under its parameter name.
func DataMerge(_ context.Context, params core.Input) (any, error) {
	out := make(map[string]any)
	for key, v := range params {
		switch m := v.(type) {
		case map[string]any:
			for k, mv := range m {
				out[k] = mv
			}
		case core.Input:
			for k, mv := range m {
				out[k] = mv
			}
		default:
			out[key] = v
		}
	}
	return out, nil
}

// CombineOutputs joins the values parameter (a list) into a single value:
// "list" keeps the list, "text" joins string forms with newlines, "dict"
// keys entries by index.
func CombineOutputs(_ context.Context, params core.Input) (any, error) {
	values, ok := params["values"].([]any)
	if !ok {
		return nil, fmt.Errorf("parameter values must be a list")
	}
	method := stringParamDefault(params, "method", "list")
	switch method {
	case "list":
		return values, nil
	case "text":
		parts := make([]string, 0, len(values))
		for _, v := range values {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
				continue
			}
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("value not serializable: %w", err)
			}
			parts = append(parts, string(b))
		}
		separator := stringParamDefault(params, "separator", "\n")
		return strings.Join(parts, separator), nil
	case "dict":
		out := make(map[string]any, len(values))
		for i, v := range values {
			out[fmt.Sprintf("output_%d", i)] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown combine method: %s", method)
	}
}
