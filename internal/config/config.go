/*
Copyright 2025 The Lumos Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the tool configuration and the kernel suites and
// workloads it evaluates.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/cpu"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lumos-dse/lumos/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. LUMOS_SWEEP_WORKERS.
const EnvPrefix = "LUMOS"

// Output formats.
const (
	OutputTable = "table"
	OutputYAML  = "yaml"
	OutputJSON  = "json"
)

// Result cache backends.
const (
	CacheNone   = "none"
	CacheFile   = "file"
	CacheSQLite = "sqlite"
)

// Config is the tool configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Sweep  SweepConfig  `mapstructure:"sweep"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Output OutputConfig `mapstructure:"output"`

	// DataDir replaces the embedded technology data when set.
	DataDir string `mapstructure:"dataDir"`

	// MetricsFile receives the sweep metrics in Prometheus text format.
	MetricsFile string `mapstructure:"metricsFile"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SweepConfig sizes the sweep worker pool.
type SweepConfig struct {
	// Workers is the number of concurrent evaluations.
	Workers int `mapstructure:"workers"`
	// QueueCapacity bounds the task and result channels.
	QueueCapacity int `mapstructure:"queueCapacity"`
}

// CacheConfig selects where sweep records are stored.
type CacheConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	// Precision is the number of decimals kept when writing workloads.
	Precision int `mapstructure:"precision"`
}

// DefaultWorkers returns the number of physical cores, or the logical CPU
// count when it cannot be determined.
func DefaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("sweep.workers", DefaultWorkers())
	v.SetDefault("sweep.queueCapacity", 64)
	v.SetDefault("cache.backend", CacheNone)
	v.SetDefault("cache.path", "")
	v.SetDefault("output.format", OutputTable)
	v.SetDefault("output.precision", 4)
	v.SetDefault("dataDir", "")
	v.SetDefault("metricsFile", "")
}

// AddFlags registers the configuration flags on fs. Flag names are the
// configuration keys with dots.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "configuration file (yaml)")
	fs.String("log.level", "info", "log level: error, info, debug or trace")
	fs.Bool("log.development", false, "human readable logs")
	fs.Int("sweep.workers", DefaultWorkers(), "concurrent design point evaluations")
	fs.Int("sweep.queueCapacity", 64, "capacity of the task and result channels")
	fs.String("cache.backend", CacheNone, "result cache backend: none, file or sqlite")
	fs.String("cache.path", "", "result cache location")
	fs.StringP("output.format", "o", OutputTable, "output format: table, yaml or json")
	fs.Int("output.precision", 4, "decimals kept when writing workloads")
	fs.String("dataDir", "", "directory with technology characterization data")
	fs.String("metricsFile", "", "write sweep metrics in Prometheus text format to this file")
}

// Load reads the configuration from defaults, the file named by the config
// flag, LUMOS_* environment variables and flags that were set, in increasing
// priority.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks for invalid configuration values.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Sweep.Workers < 1 {
		errs = append(errs, fmt.Errorf("sweep.workers must be >= 1, got %d", c.Sweep.Workers))
	}
	if c.Sweep.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("sweep.queueCapacity must be >= 1, got %d", c.Sweep.QueueCapacity))
	}
	switch c.Cache.Backend {
	case CacheNone:
	case CacheFile, CacheSQLite:
		if c.Cache.Path == "" {
			errs = append(errs, fmt.Errorf("cache.path is required for the %s backend", c.Cache.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported cache.backend %q", c.Cache.Backend))
	}
	switch c.Output.Format {
	case OutputTable, OutputYAML, OutputJSON:
	default:
		errs = append(errs, fmt.Errorf("unsupported output.format %q", c.Output.Format))
	}
	if c.Output.Precision < 0 || c.Output.Precision > 12 {
		errs = append(errs, fmt.Errorf("output.precision must be between 0 and 12, got %d", c.Output.Precision))
	}
	return errors.Join(errs...)
}
