package builtin

import (
	"fmt"

	"github.com/flowmesh/flowmesh/engine/core"
)

func stringParam(params core.Input, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing parameter: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string, got %T", key, v)
	}
	return s, nil
}

func stringParamDefault(params core.Input, key, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func mapParam(params core.Input, key string) map[string]any {
	if v, ok := params[key]; ok {
		switch m := v.(type) {
		case map[string]any:
			return m
		case core.Input:
			return m
		}
	}
	return nil
}

func floatParam(params core.Input, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}
