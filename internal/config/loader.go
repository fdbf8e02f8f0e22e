package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if BRANDSCOPE_CONFIG is set
//  3. env (prefix BRANDSCOPE_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("BRANDSCOPE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: BRANDSCOPE_ADDR, BRANDSCOPE_STORE_URL, ...
	// Map env keys like BRANDSCOPE_STORE_URL -> store_url (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("BRANDSCOPE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "brandscope_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.StoreURL == "" {
		return nil, fmt.Errorf("%w: store_url must not be empty", ErrInvalidConfig)
	}
	if cfg.StoreTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("%w: store_timeout_seconds must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
