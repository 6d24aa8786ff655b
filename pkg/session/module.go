package session

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/gomud/pkg/errors"
	"github.com/arthur-debert/gomud/pkg/match"
)

// Script modules: trigger, alias and timer definitions loaded from a TOML
// or YAML file. All objects from one module share a group named after the
// module, so the whole module can be toggled or unloaded at once.

// ModuleSpec is the on-disk shape of a module file.
type ModuleSpec struct {
	Name     string        `toml:"name" yaml:"name"`
	Triggers []TriggerSpec `toml:"triggers" yaml:"triggers"`
	Aliases  []AliasSpec   `toml:"aliases" yaml:"aliases"`
	Timers   []TimerSpec   `toml:"timers" yaml:"timers"`
}

type TriggerSpec struct {
	ID         string   `toml:"id" yaml:"id"`
	Patterns   []string `toml:"patterns" yaml:"patterns"`
	Code       string   `toml:"code" yaml:"code"`
	Priority   int      `toml:"priority" yaml:"priority"`
	Disabled   bool     `toml:"disabled" yaml:"disabled"`
	OneShot    bool     `toml:"one_shot" yaml:"one_shot"`
	KeepEval   bool     `toml:"keep_eval" yaml:"keep_eval"`
	IgnoreCase bool     `toml:"ignore_case" yaml:"ignore_case"`
	Literal    bool     `toml:"literal" yaml:"literal"`
	Raw        bool     `toml:"raw" yaml:"raw"`
}

type AliasSpec struct {
	ID       string   `toml:"id" yaml:"id"`
	Patterns []string `toml:"patterns" yaml:"patterns"`
	Code     string   `toml:"code" yaml:"code"`
	Priority int      `toml:"priority" yaml:"priority"`
	Disabled bool     `toml:"disabled" yaml:"disabled"`
}

type TimerSpec struct {
	ID       string  `toml:"id" yaml:"id"`
	Code     string  `toml:"code" yaml:"code"`
	Seconds  float64 `toml:"seconds" yaml:"seconds"`
	Disabled bool    `toml:"disabled" yaml:"disabled"`
	OneShot  bool    `toml:"one_shot" yaml:"one_shot"`
}

// LoadModule reads a module file and registers its objects. The format is
// chosen by extension: .toml, .yaml or .yml.
func (s *Session) LoadModule(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrModuleLoad, "cannot read module file %s", path)
	}

	var spec ModuleSpec
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &spec); err != nil {
			return errors.Wrapf(err, errors.ErrModuleParse, "bad TOML in %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return errors.Wrapf(err, errors.ErrModuleParse, "bad YAML in %s", path)
		}
	default:
		return errors.Newf(errors.ErrModuleParse, "unsupported module format %q", ext)
	}

	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.registerModule(&spec); err != nil {
		return err
	}

	s.Info("loaded module %q from %s", spec.Name, path)
	s.logger.Info().Str("module", spec.Name).Str("path", path).Msg("module loaded")
	return nil
}

// UnloadModule drops every object registered under a module's group.
func (s *Session) UnloadModule(name string) int {
	n := s.removeGroup(name)
	s.Info("unloaded %d objects of module %q", n, name)
	return n
}

func (s *Session) registerModule(spec *ModuleSpec) error {
	for _, ts := range spec.Triggers {
		opts := []match.Option{match.WithGroup(spec.Name)}
		if ts.ID != "" {
			opts = append(opts, match.WithID(ts.ID))
		}
		if ts.Priority != 0 {
			opts = append(opts, match.WithPriority(ts.Priority))
		}
		if ts.Disabled {
			opts = append(opts, match.WithEnabled(false))
		}
		if ts.OneShot {
			opts = append(opts, match.WithOneShot())
		}
		if ts.KeepEval {
			opts = append(opts, match.WithKeepEval())
		}
		if ts.IgnoreCase {
			opts = append(opts, match.WithIgnoreCase())
		}
		if ts.Literal {
			opts = append(opts, match.WithLiteral())
		}
		if ts.Raw {
			opts = append(opts, match.WithRaw())
		}
		if _, err := s.NewSimpleTrigger(ts.Patterns, ts.Code, opts...); err != nil {
			return errors.Wrapf(err, errors.ErrModuleLoad, "module %q trigger %q", spec.Name, ts.ID)
		}
	}

	for _, as := range spec.Aliases {
		opts := []match.Option{match.WithGroup(spec.Name)}
		if as.ID != "" {
			opts = append(opts, match.WithID(as.ID))
		}
		if as.Priority != 0 {
			opts = append(opts, match.WithPriority(as.Priority))
		}
		if as.Disabled {
			opts = append(opts, match.WithEnabled(false))
		}
		if _, err := s.NewSimpleAlias(as.Patterns, as.Code, opts...); err != nil {
			return errors.Wrapf(err, errors.ErrModuleLoad, "module %q alias %q", spec.Name, as.ID)
		}
	}

	for _, tms := range spec.Timers {
		opts := []match.Option{match.WithGroup(spec.Name)}
		if tms.ID != "" {
			opts = append(opts, match.WithID(tms.ID))
		}
		if tms.Disabled {
			opts = append(opts, match.WithEnabled(false))
		}
		if tms.OneShot {
			opts = append(opts, match.WithOneShot())
		}
		interval := time.Duration(tms.Seconds * float64(time.Second))
		if _, err := s.NewSimpleTimer(interval, tms.Code, opts...); err != nil {
			return errors.Wrapf(err, errors.ErrModuleLoad, "module %q timer %q", spec.Name, tms.ID)
		}
	}

	return nil
}
