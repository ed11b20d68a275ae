package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/sondelabs/querywatch/internal/severity"
)

// Config is the top-level querywatch configuration.
type Config struct {
	Analyzers       map[string]Analyzer `mapstructure:"analyzers"`
	SensitiveFields []string            `mapstructure:"sensitive_fields"`
	Logging         Logging             `mapstructure:"logging"`
	Diagnostic      Diagnostic          `mapstructure:"diagnostic"`
	Output          Output              `mapstructure:"output"`
}

// Analyzer holds the per-kind switches and threshold overrides.
type Analyzer struct {
	Enabled    bool               `mapstructure:"enabled"`
	Thresholds map[string]float64 `mapstructure:"thresholds"`
}

// Logging defines the diagnostic log settings.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Diagnostic defines the injected plan capability. An empty DSN leaves
// the capability disabled.
type Diagnostic struct {
	Driver    string `mapstructure:"driver"`
	DSN       string `mapstructure:"dsn"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

// Output defines report rendering preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// IsEnabled reports whether an analyzer kind is switched on. Kinds absent
// from the configuration default to enabled.
func (c *Config) IsEnabled(kind string) bool {
	a, ok := c.Analyzers[kind]
	if !ok {
		return true
	}
	return a.Enabled
}

// ThresholdOverrides collects the configured per-kind threshold
// overrides in the shape the analysis pass consumes.
func (c *Config) ThresholdOverrides() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(c.Analyzers))
	for kind, a := range c.Analyzers {
		if len(a.Thresholds) > 0 {
			out[kind] = a.Thresholds
		}
	}
	return out
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default
// location) and returns a validated Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	for _, kind := range severity.Kinds() {
		v.SetDefault(fmt.Sprintf("analyzers.%s.enabled", kind), true)
	}
	v.SetDefault("sensitive_fields", DefaultSensitiveFields)
	v.SetDefault("logging.level", DefaultLogging.Level)
	v.SetDefault("logging.format", DefaultLogging.Format)
	v.SetDefault("logging.output", DefaultLogging.Output)
	v.SetDefault("diagnostic.driver", DefaultDiagnostic.Driver)
	v.SetDefault("diagnostic.dsn", DefaultDiagnostic.DSN)
	v.SetDefault("diagnostic.timeout_ms", DefaultDiagnostic.TimeoutMs)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Missing file is not an error; a broken file is.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
