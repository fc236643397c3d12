package config

import (
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gatelink/sync-bridge/errors"
)

// Config is the tool-level configuration. Library packages take options
// structs instead; this file only serves the cmd tooling.
type Config struct {
	Pool    PoolConfig    `yaml:"pool"`
	Logging LoggingConfig `yaml:"logging"`
}

type PoolConfig struct {
	Size          int     `yaml:"size"`
	RatePerSecond float64 `yaml:"ratePerSecond"`
	Burst         int     `yaml:"burst"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Pool:    PoolConfig{Size: 64},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadFromPath reads a YAML config file, falling back to defaults when
// path is empty or missing. Environment variables override file values.
func LoadFromPath(path string) (Config, error) {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if path != "" {
		candidates = append(candidates, path)
	} else {
		candidates = append(candidates, "sync-bridge.yaml", "configs/sync-bridge.yaml")
	}

	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			if path != "" {
				return cfg, errors.InvalidConfig("read config file "+p, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.InvalidConfig("parse config file "+p, err)
		}
		break
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BRIDGE_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pool.Size = n
		}
	}
	if v := os.Getenv("BRIDGE_POOL_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Pool.RatePerSecond = f
		}
	}
	if v := os.Getenv("BRIDGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// BuildLogger constructs a zap logger from the logging section.
func (c LoggingConfig) BuildLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, errors.InvalidConfig("parse log level "+c.Level, err)
	}
	zc.Level = level
	return zc.Build()
}
