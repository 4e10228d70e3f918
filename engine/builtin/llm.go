package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/flowmesh/flowmesh/engine/core"
	"github.com/flowmesh/flowmesh/engine/model"
	"github.com/flowmesh/flowmesh/pkg/logger"
)

const (
	defaultModel       = "gemma3:4b"
	defaultHTTPTimeout = 120 * time.Second
	anthropicVersion   = "2023-06-01"
)

// Client issues chat-completion calls against whatever platform the model table
// maps a model name to.
type Client struct {
	http     *resty.Client
	provider *model.Provider
	apiKey   string
}

type ClientOption func(*Client)

func WithProvider(p *model.Provider) ClientOption {
	return func(c *Client) {
		c.provider = p
	}
}

func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http: resty.New().SetTimeout(defaultHTTPTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.provider == nil {
		c.provider = model.NewProvider(nil)
	}
	return c
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Call sends messages to the named model and returns the assistant text.
func (c *Client) Call(ctx context.Context, modelName, apiKey string, messages []message, params core.Input) (string, error) {
	if modelName == "" {
		modelName = defaultModel
	}
	if apiKey == "" {
		apiKey = c.apiKey
	}
	cfg := c.provider.Lookup(modelName)
	log := logger.FromContext(ctx)
	log.Debug("llm call", "model", modelName, "platform", cfg.Platform, "messages", len(messages))

	switch cfg.MessageFormat {
	case model.FormatAnthropic:
		return c.callAnthropic(ctx, cfg, modelName, apiKey, messages, params)
	case model.FormatOllama:
		return c.callOllama(ctx, cfg, modelName, messages, params)
	case model.FormatGoogle:
		return c.callGoogle(ctx, cfg, modelName, apiKey, messages)
	default:
		return c.callOpenAI(ctx, cfg, modelName, apiKey, messages, params)
	}
}

func samplingParams(cfg model.Config, params core.Input, body map[string]any) {
	for _, key := range cfg.Supports {
		if v, ok := floatParam(params, key); ok {
			body[key] = v
		}
	}
}

func (c *Client) callOpenAI(
	ctx context.Context,
	cfg model.Config,
	modelName, apiKey string,
	messages []message,
	params core.Input,
) (string, error) {
	body := map[string]any{
		"model":      modelName,
		"messages":   messages,
		"max_tokens": cfg.MaxTokens,
	}
	samplingParams(cfg, params, body)
	req := c.http.R().SetContext(ctx).SetBody(body)
	if apiKey != "" && cfg.AuthHeader != "" {
		req.SetHeader("Authorization", fmt.Sprintf("%s %s", cfg.AuthHeader, apiKey))
	}
	resp, err := req.Post(cfg.APIURL)
	if err != nil {
		return "", fmt.Errorf("openai-compatible call failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openai-compatible call failed: status %d: %s", resp.StatusCode(), resp.String())
	}
	content := gjson.GetBytes(resp.Body(), "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("openai-compatible response missing content: %s", resp.String())
	}
	return content.String(), nil
}

func (c *Client) callAnthropic(
	ctx context.Context,
	cfg model.Config,
	modelName, apiKey string,
	messages []message,
	params core.Input,
) (string, error) {
	body := map[string]any{
		"model":      modelName,
		"messages":   messages,
		"max_tokens": cfg.MaxTokens,
	}
	samplingParams(cfg, params, body)
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetBody(body).
		Post(cfg.APIURL)
	if err != nil {
		return "", fmt.Errorf("anthropic call failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic call failed: status %d: %s", resp.StatusCode(), resp.String())
	}
	content := gjson.GetBytes(resp.Body(), "content.0.text")
	if !content.Exists() {
		return "", fmt.Errorf("anthropic response missing content: %s", resp.String())
	}
	return content.String(), nil
}

func (c *Client) callOllama(
	ctx context.Context,
	cfg model.Config,
	modelName string,
	messages []message,
	params core.Input,
) (string, error) {
	options := map[string]any{}
	samplingParams(cfg, params, options)
	body := map[string]any{
		"model":    modelName,
		"messages": messages,
		"stream":   false,
	}
	if len(options) > 0 {
		body["options"] = options
	}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(cfg.APIURL)
	if err != nil {
		return "", fmt.Errorf("ollama call failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ollama call failed: status %d: %s", resp.StatusCode(), resp.String())
	}
	content := gjson.GetBytes(resp.Body(), "message.content")
	if !content.Exists() {
		return "", fmt.Errorf("ollama response missing content: %s", resp.String())
	}
	return content.String(), nil
}

func (c *Client) callGoogle(
	ctx context.Context,
	cfg model.Config,
	modelName, apiKey string,
	messages []message,
) (string, error) {
	parts := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, map[string]any{"text": m.Content})
	}
	body := map[string]any{
		"contents": []map[string]any{{"parts": parts}},
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetBody(body).
		Post(cfg.APIURL)
	if err != nil {
		return "", fmt.Errorf("google call failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("google call failed: status %d: %s", resp.StatusCode(), resp.String())
	}
	content := gjson.GetBytes(resp.Body(), "candidates.0.content.parts.0.text")
	if !content.Exists() {
		return "", fmt.Errorf("google response missing content: %s", resp.String())
	}
	return content.String(), nil
}

// APICall is the llm_api_call builtin: a single-prompt completion.
func (c *Client) APICall(ctx context.Context, params core.Input) (any, error) {
	prompt, err := stringParam(params, "prompt")
	if err != nil {
		return nil, err
	}
	modelName := stringParamDefault(params, "model", defaultModel)
	apiKey := stringParamDefault(params, "api_key", "")
	return c.Call(ctx, modelName, apiKey, []message{{Role: "user", Content: prompt}}, params)
}

// SimpleCall is the llm_simple_call builtin: user_input in, answer out.
func (c *Client) SimpleCall(ctx context.Context, params core.Input) (any, error) {
	input, err := stringParam(params, "user_input")
	if err != nil {
		return nil, err
	}
	modelName := stringParamDefault(params, "model", defaultModel)
	apiKey := stringParamDefault(params, "api_key", "")
	return c.Call(ctx, modelName, apiKey, []message{{Role: "user", Content: input}}, params)
}

// ChatCall is the llm_chat_call builtin: a full message history.
func (c *Client) ChatCall(ctx context.Context, params core.Input) (any, error) {
	raw, ok := params["messages"].([]any)
	if !ok {
		return nil, fmt.Errorf("parameter messages must be a list")
	}
	messages := make([]message, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("messages[%d] must be a mapping", i)
		}
		role, _ := m["role"].(string)
		content, _ := m["content"].(string)
		if role == "" || content == "" {
			return nil, fmt.Errorf("messages[%d] needs role and content", i)
		}
		messages = append(messages, message{Role: role, Content: content})
	}
	modelName := stringParamDefault(params, "model", defaultModel)
	apiKey := stringParamDefault(params, "api_key", "")
	return c.Call(ctx, modelName, apiKey, messages, params)
}
