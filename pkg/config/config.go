// Package config loads process-level engine settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "FLOWMESH_"

// Config carries the tunables the engine reads at startup. Values in a
// workflow document (such as per-task timeouts) are not checked against them.
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Engine EngineConfig `koanf:"engine" validate:"required"`
}

type LogConfig struct {
	Level  string `koanf:"level"  validate:"omitempty,oneof=debug info warn error"`
	JSON   bool   `koanf:"json"`
	Source bool   `koanf:"source"`
}

type EngineConfig struct {
	// MaxInFlight bounds concurrent tasks per run; zero means unbounded.
	MaxInFlight int `koanf:"max_in_flight" validate:"gte=0"`
	// RunTimeout bounds a whole run; zero means none.
	RunTimeout time.Duration `koanf:"run_timeout" validate:"gte=0"`
	// RetryBackoffBase seeds the executor's exponential backoff.
	RetryBackoffBase time.Duration `koanf:"retry_backoff_base" validate:"gt=0"`
	// RetryBackoffCap bounds a single backoff sleep.
	RetryBackoffCap time.Duration `koanf:"retry_backoff_cap" validate:"gt=0"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Engine: EngineConfig{
			MaxInFlight:      0,
			RunTimeout:       0,
			RetryBackoffBase: 100 * time.Millisecond,
			RetryBackoffCap:  5 * time.Second,
		},
	}
}

// Load layers FLOWMESH_* environment variables over the defaults and
// validates the result. FLOWMESH_ENGINE_MAX_IN_FLIGHT=8 maps to
// engine.max_in_flight.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, envPrefix)
			key = strings.ToLower(key)
			// ENGINE_MAX_IN_FLIGHT -> engine.max_in_flight
			if section, rest, found := strings.Cut(key, "_"); found {
				return section + "." + rest, value
			}
			return key, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}
