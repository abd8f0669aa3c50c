// Package config loads the service configuration from a JSON or YAML
// file with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/rjoseph-dev/crewsched/core/crewpair"
	"github.com/rjoseph-dev/crewsched/core/fatigue"
	"github.com/rjoseph-dev/crewsched/core/scheduler"
	"github.com/rjoseph-dev/crewsched/infra/metrics"
	"github.com/rjoseph-dev/crewsched/infra/store"
	"github.com/rjoseph-dev/crewsched/jobs/autogen"
)

type Config struct {
	Store     store.Config      `json:"store"`
	Cache     store.CacheConfig `json:"cache"`
	Scheduler scheduler.Policy  `json:"scheduler"`
	Fatigue   fatigue.Policy    `json:"fatigue"`
	CrewPair  crewpair.Config   `json:"crew_pair"`
	Metrics   metrics.Config    `json:"metrics"`
	Autogen   autogen.Config    `json:"autogen"`
}

// Load reads the file at path, applies K_ environment overrides
// (K_STORE__DRIVER=postgres sets store.driver), then defaults and
// validation per section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.finalize(); err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) finalize() error {
	c.Store.SetDefaults()
	c.Cache.SetDefaults()
	c.Scheduler.SetDefaults()
	c.Fatigue.SetDefaults()
	c.Metrics.SetDefaults()
	c.Autogen.SetDefaults()
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := c.Fatigue.Validate(); err != nil {
		return fmt.Errorf("fatigue: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.Autogen.Validate(); err != nil {
		return fmt.Errorf("autogen: %w", err)
	}
	return nil
}
