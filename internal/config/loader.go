package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment settings.
const (
	EnvPrefix     = "ATTRITION_"
	EnvConfigPath = "ATTRITION_CONFIG"
)

// listKeys hold comma separated lists when set from the environment.
var listKeys = map[string]struct{}{
	"group_dimensions":     {},
	"correlation_features": {},
}

// Load builds a Config by layering defaults, optional file, and env vars.
// The file path comes from ATTRITION_CONFIG.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, os.Getenv(EnvConfigPath))
}

// LoadFrom is Load with an explicit file path. An empty path skips the file.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) at path
//  3. env (prefix ATTRITION_)
func LoadFrom(_ context.Context, path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ATTRITION_DATABASE_PATH -> database_path. Underscores are kept to match
	// the flat koanf tags; list keys split on commas.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "config" {
			return "", nil
		}
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	// Lists are decoded into empty slices so a shorter override replaces the
	// defaults instead of overwriting a prefix of them.
	cfg := *base
	cfg.GroupDimensions, cfg.CorrelationFeatures = nil, nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if len(cfg.GroupDimensions) == 0 {
		cfg.GroupDimensions = base.GroupDimensions
	}
	if len(cfg.CorrelationFeatures) == 0 {
		cfg.CorrelationFeatures = base.CorrelationFeatures
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
