// Package config loads benchmark configuration from a YAML file with
// environment variable overrides, and builds the process logger.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"

	"github.com/hed1ad/waterbench/pkg/dataset"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "waterbench.yaml"

// Config is the complete benchmark configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// DataConfig locates remote storage and the local working directories.
// Defaults are applied in applyDefaults, not in envconfig tags: the env
// pass runs after the YAML file and tag defaults would stomp file values.
type DataConfig struct {
	BaseURL    string `yaml:"base_url" envconfig:"BASE_URL"`
	CacheDir   string `yaml:"cache_dir" envconfig:"CACHE_DIR"`
	FiguresDir string `yaml:"figures_dir" envconfig:"FIGURES_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// Load reads the YAML config file when present, then applies WB_*
// environment overrides, then validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = DefaultFile
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := envconfig.Process("WB", cfg); err != nil {
		return nil, fmt.Errorf("config from env: %w", err)
	}

	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills whatever neither the file nor the environment set.
func applyDefaults(cfg *Config) {
	if cfg.Data.BaseURL == "" {
		cfg.Data.BaseURL = dataset.DefaultBaseURL
	}
	if cfg.Data.CacheDir == "" {
		cfg.Data.CacheDir = filepath.Join("data", "cache")
	}
	if cfg.Data.FiguresDir == "" {
		cfg.Data.FiguresDir = filepath.Join("reports", "figures")
	}
	if cfg.Data.ReportsDir == "" {
		cfg.Data.ReportsDir = "reports"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) validate() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level %q: %w", c.Logging.Level, err)
	}
	return nil
}

// Logger builds the process logger from the logging section.
func (c *Config) Logger() (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
