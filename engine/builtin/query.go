package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/flowmesh/flowmesh/engine/core"
)

// JSONQuery extracts a gjson path from a JSON document. The document may be
// a JSON string or any serializable value.
func JSONQuery(_ context.Context, params core.Input) (any, error) {
	path, err := stringParam(params, "path")
	if err != nil {
		return nil, err
	}
	doc, ok := params["document"]
	if !ok {
		return nil, fmt.Errorf("missing parameter: document")
	}
	var raw []byte
	if s, isString := doc.(string); isString {
		raw = []byte(s)
	} else {
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("document not serializable: %w", err)
		}
		raw = b
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("document is not valid JSON")
	}
	result := gjson.GetBytes(raw, path)
	if !result.Exists() {
		return nil, nil
	}
	return result.Value(), nil
}
