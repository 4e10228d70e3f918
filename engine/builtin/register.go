// Package builtin is the stock function library installed into a registry:
// LLM chat calls, HTTP requests, and text/JSON/math helpers.
package builtin

import (
	"github.com/flowmesh/flowmesh/engine/registry"
)

// RegisterAll installs the builtin library into reg. Options configure the
// shared LLM client (model table, API key, HTTP timeout).
func RegisterAll(reg *registry.Registry, opts ...ClientOption) {
	llm := NewClient(opts...)
	reg.Register("llm_api_call", llm.APICall)
	reg.Register("llm_simple_call", llm.SimpleCall)
	reg.Register("llm_chat_call", llm.ChatCall)
	reg.Register("http_request_get", llm.HTTPGet)
	reg.Register("http_request_post_json", llm.HTTPPostJSON)
	reg.Register("http_request", llm.HTTPRequest)
	reg.Register("text_process", TextProcess)
	reg.Register("string_to_json", StringToJSON)
	reg.Register("json_to_string", JSONToString)
	reg.Register("data_merge", DataMerge)
	reg.Register("combine_outputs", CombineOutputs)
	reg.Register("calculate", Calculate)
	reg.Register("json_query", JSONQuery)
}
