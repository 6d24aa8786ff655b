package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/gomud/pkg/errors"
)

// Load builds the configuration from, in order of increasing precedence:
// built-in defaults, the user's config file, and GOMUD_ environment
// variables. A missing config file is not an error.
func Load() (*Config, error) {
	return LoadFrom(ConfigFilePath())
}

// LoadFrom is Load with an explicit config file path, used by tests and the
// --config flag.
func LoadFrom(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides is LoadFrom with an extra highest-precedence layer of
// dotted-key overrides, e.g. {"client.echo_input": true}. Command-line flags
// land here.
func LoadWithOverrides(path string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in defaults")
	}

	// 2. User config file, if present
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path)
			}
		}
	}

	// 3. Environment overrides: GOMUD_SERVER_GMCP=false etc. Only the first
	// underscore separates the section from the key, so multi-word keys like
	// GOMUD_CLIENT_NAWS_WIDTH map to client.naws_width.
	if err := k.Load(env.Provider("GOMUD_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "GOMUD_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	// 4. Explicit overrides win over everything
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	return cfg, nil
}

// ConfigFilePath returns the default config file location under
// XDG_CONFIG_HOME.
func ConfigFilePath() string {
	return filepath.Join(xdg.ConfigHome, "gomud", "config.toml")
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}
