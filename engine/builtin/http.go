package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowmesh/flowmesh/engine/core"
)

func toStringMap(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}

// HTTPGet is the http_request_get builtin.
func (c *Client) HTTPGet(ctx context.Context, params core.Input) (any, error) {
	url, err := stringParam(params, "url")
	if err != nil {
		return nil, err
	}
	req := c.http.R().SetContext(ctx)
	if q := toStringMap(mapParam(params, "params")); q != nil {
		req.SetQueryParams(q)
	}
	if h := toStringMap(mapParam(params, "headers")); h != nil {
		req.SetHeaders(h)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s failed: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("GET %s failed: status %d", url, resp.StatusCode())
	}
	return resp.String(), nil
}

// HTTPPostJSON is the http_request_post_json builtin.
func (c *Client) HTTPPostJSON(ctx context.Context, params core.Input) (any, error) {
	url, err := stringParam(params, "url")
	if err != nil {
		return nil, err
	}
	req := c.http.R().SetContext(ctx)
	if data := mapParam(params, "data"); data != nil {
		req.SetBody(data)
	}
	if h := toStringMap(mapParam(params, "headers")); h != nil {
		req.SetHeaders(h)
	}
	resp, err := req.Post(url)
	if err != nil {
		return nil, fmt.Errorf("POST %s failed: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("POST %s failed: status %d", url, resp.StatusCode())
	}
	return resp.String(), nil
}

// HTTPRequest is the generic http_request builtin; method defaults to GET.
func (c *Client) HTTPRequest(ctx context.Context, params core.Input) (any, error) {
	url, err := stringParam(params, "url")
	if err != nil {
		return nil, err
	}
	method := strings.ToUpper(stringParamDefault(params, "method", "GET"))
	req := c.http.R().SetContext(ctx)
	if q := toStringMap(mapParam(params, "params")); q != nil {
		req.SetQueryParams(q)
	}
	if h := toStringMap(mapParam(params, "headers")); h != nil {
		req.SetHeaders(h)
	}
	if data := mapParam(params, "data"); data != nil {
		req.SetBody(data)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s %s failed: status %d", method, url, resp.StatusCode())
	}
	return resp.String(), nil
}
