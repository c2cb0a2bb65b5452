package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultsConfig holds execution parameters applied when the caller does
// not override them on the command line.
type DefaultsConfig struct {
	Image          string `mapstructure:"image"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MemoryMB       int    `mapstructure:"memory_mb"`
	DiskMB         int    `mapstructure:"disk_mb"`
	CPUShares      int    `mapstructure:"cpu_shares"`
	Network        bool   `mapstructure:"network"`
}

// BenchConfig holds benchmark tooling settings.
type BenchConfig struct {
	HistoryPath string `mapstructure:"history_path"`
	Iterations  int    `mapstructure:"iterations"`
}

type Config struct {
	// Server is the base URL of the pybox service.
	Server string `mapstructure:"server"`
	// HTTPTimeout bounds a single HTTP exchange. Sync executions span the
	// whole remote run inside one exchange, so keep it generous.
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	// PollInterval is the default interval for wait polling.
	PollInterval time.Duration  `mapstructure:"poll_interval"`
	Defaults     DefaultsConfig `mapstructure:"defaults"`
	Bench        BenchConfig    `mapstructure:"bench"`
}

// Load reads pybox.yaml from the working directory or ~/.pybox, then applies
// PYBOX_* environment overrides (e.g. PYBOX_SERVER). A missing config file
// is not an error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("pybox")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.pybox")

	v.SetEnvPrefix("PYBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("http_timeout", 5*time.Minute)
	v.SetDefault("poll_interval", 2*time.Second)
	v.SetDefault("bench.history_path", filepath.Join(os.Getenv("HOME"), ".pybox", "bench.db"))
	v.SetDefault("bench.iterations", 3)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}
