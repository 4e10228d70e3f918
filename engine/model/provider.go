// Package model is the multi-vendor model-configuration table consulted by
// the builtin LLM functions.
package model

import (
	"fmt"
	"sort"
	"sync"

	"dario.cat/mergo"
)

// Platform identifies the API dialect a model speaks.
type Platform string

const (
	PlatformOllama           Platform = "ollama"
	PlatformOpenAICompatible Platform = "openai_compatible"
	PlatformAnthropic        Platform = "anthropic"
	PlatformGoogle           Platform = "google"
)

// MessageFormat selects the request/response wire shape.
type MessageFormat string

const (
	FormatOpenAI    MessageFormat = "openai"
	FormatAnthropic MessageFormat = "anthropic"
	FormatOllama    MessageFormat = "ollama"
	FormatGoogle    MessageFormat = "google"
)

// Config describes how to reach one model.
type Config struct {
	Platform      Platform      `json:"platform"              yaml:"platform"`
	APIURL        string        `json:"api_url"               yaml:"api_url"`
	AuthHeader    string        `json:"auth_header,omitempty" yaml:"auth_header,omitempty"`
	MessageFormat MessageFormat `json:"message_format"        yaml:"message_format"`
	MaxTokens     int           `json:"max_tokens"            yaml:"max_tokens"`
	Supports      []string      `json:"supports,omitempty"    yaml:"supports,omitempty"`
}

func (c *Config) validate() error {
	if c.Platform == "" {
		return fmt.Errorf("model config missing platform")
	}
	if c.APIURL == "" {
		return fmt.Errorf("model config missing api_url")
	}
	if c.MessageFormat == "" {
		return fmt.Errorf("model config missing message_format")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("model config missing max_tokens")
	}
	return nil
}

// defaultModels favors local ollama models, matching the engine's default
// deployment; anything unknown falls back to the OpenAI-compatible shape.
func defaultModels() map[string]Config {
	ollama := func(maxTokens int) Config {
		return Config{
			Platform:      PlatformOllama,
			APIURL:        "http://localhost:11434/api/chat",
			MessageFormat: FormatOllama,
			MaxTokens:     maxTokens,
			Supports:      []string{"temperature", "top_p", "top_k"},
		}
	}
	return map[string]Config{
		"gemma3:4b": ollama(8192),
		"qwen2.5":   ollama(8192),
		"gemma2":    ollama(8192),
		"phi3":      ollama(4096),
	}
}

// FallbackConfig is returned for models absent from the table.
func FallbackConfig() Config {
	return Config{
		Platform:      PlatformOpenAICompatible,
		APIURL:        "https://api.openai.com/v1/chat/completions",
		AuthHeader:    "Bearer",
		MessageFormat: FormatOpenAI,
		MaxTokens:     4096,
		Supports:      []string{"temperature", "top_p", "frequency_penalty", "presence_penalty", "stop"},
	}
}

// Provider is a concurrency-safe model table.
type Provider struct {
	mu     sync.RWMutex
	models map[string]Config
}

// NewProvider builds a table from the defaults overlaid with custom entries.
func NewProvider(custom map[string]Config) *Provider {
	models := defaultModels()
	for name, cfg := range custom {
		models[name] = cfg
	}
	return &Provider{models: models}
}

// Lookup returns the config for a model, or the OpenAI-compatible fallback
// when the model is not in the table.
func (p *Provider) Lookup(name string) Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if cfg, ok := p.models[name]; ok {
		return cfg
	}
	return FallbackConfig()
}

func (p *Provider) Has(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.models[name]
	return ok
}

// Add installs a fully-specified model config.
func (p *Provider) Add(name string, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("model %s: %w", name, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.models[name] = cfg
	return nil
}

// Update merges cfg over an existing entry; unknown names behave like Add.
func (p *Provider) Update(name string, cfg Config) error {
	p.mu.Lock()
	existing, ok := p.models[name]
	p.mu.Unlock()
	if !ok {
		return p.Add(name, cfg)
	}
	if err := mergo.Merge(&existing, cfg, mergo.WithOverride); err != nil {
		return fmt.Errorf("model %s: %w", name, err)
	}
	p.mu.Lock()
	p.models[name] = existing
	p.mu.Unlock()
	return nil
}

func (p *Provider) Remove(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.models, name)
}

// Platforms lists the distinct platforms present in the table.
func (p *Provider) Platforms() []Platform {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seen := make(map[Platform]struct{})
	for _, cfg := range p.models {
		seen[cfg.Platform] = struct{}{}
	}
	out := make([]Platform, 0, len(seen))
	for platform := range seen {
		out = append(out, platform)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ModelsByPlatform groups model names by platform, names sorted.
func (p *Provider) ModelsByPlatform() map[Platform][]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[Platform][]string)
	for name, cfg := range p.models {
		out[cfg.Platform] = append(out[cfg.Platform], name)
	}
	for platform := range out {
		sort.Strings(out[platform])
	}
	return out
}
