package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/newthinker/quantsim/internal/core"
	"github.com/newthinker/quantsim/internal/frequency"
	"github.com/spf13/viper"
)

type Config struct {
	Backtest   BacktestConfig            `mapstructure:"backtest"`
	Data       DataConfig                `mapstructure:"data"`
	Strategies map[string]StrategyConfig `mapstructure:"strategies"`
	Logging    LoggingConfig             `mapstructure:"logging"`
	Metrics    MetricsConfig             `mapstructure:"metrics"`
	Runner     RunnerConfig              `mapstructure:"runner"`
}

type BacktestConfig struct {
	InitialCapital       float64 `mapstructure:"initial_capital"`
	Commission           float64 `mapstructure:"commission"`
	Slippage             float64 `mapstructure:"slippage"`
	RebalancingFrequency string  `mapstructure:"rebalancing_frequency"`
}

// DataConfig locates the price table
type DataConfig struct {
	Source string   `mapstructure:"source"` // "localfs" or "s3"
	Root   string   `mapstructure:"root"`   // base directory for localfs
	Path   string   `mapstructure:"path"`   // object key or relative file path
	S3     S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type StrategyConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Params  map[string]any `mapstructure:"params"`
}

// LoggingConfig controls the process logger. An empty File logs to stderr.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
	File        string `mapstructure:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
	Compress    bool   `mapstructure:"compress"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// RunnerConfig bounds batch execution
type RunnerConfig struct {
	MaxParallel int `mapstructure:"max_parallel"`
}

// Load reads configuration from file. Values not present in the file keep
// their defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	// Support environment variable overrides
	v.SetEnvPrefix("QUANTSIM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("backtest.initial_capital", d.Backtest.InitialCapital)
	v.SetDefault("backtest.commission", d.Backtest.Commission)
	v.SetDefault("backtest.slippage", d.Backtest.Slippage)
	v.SetDefault("backtest.rebalancing_frequency", d.Backtest.RebalancingFrequency)
	v.SetDefault("data.source", d.Data.Source)
	v.SetDefault("data.root", d.Data.Root)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("runner.max_parallel", d.Runner.MaxParallel)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCapital:       10000,
			Commission:           0.001,
			Slippage:             0,
			RebalancingFrequency: string(frequency.Daily),
		},
		Data: DataConfig{
			Source: "localfs",
			Root:   ".",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "quantsim",
		},
		Runner: RunnerConfig{
			MaxParallel: 4,
		},
	}
}

// EnabledStrategies returns the names of enabled strategies in sorted order
func (c *Config) EnabledStrategies() []string {
	var names []string
	for name, s := range c.Strategies {
		if s.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	b := c.Backtest
	if b.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %v", b.InitialCapital))
	}
	if b.Commission < 0 || b.Slippage < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission and slippage cannot be negative, got %v/%v", b.Commission, b.Slippage))
	}
	if _, err := frequency.Parse(b.RebalancingFrequency); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}

	switch c.Data.Source {
	case "localfs":
	case "s3":
		if c.Data.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("data.s3.bucket required when source is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("data.source must be localfs or s3, got %q", c.Data.Source))
	}

	if c.Runner.MaxParallel < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("runner.max_parallel must be at least 1, got %d", c.Runner.MaxParallel))
	}

	return nil
}
