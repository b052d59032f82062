package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the duplicate finder configuration
type Config struct {
	Detection DetectionConfig `mapstructure:"detection"`
	Finder    FinderConfig    `mapstructure:"finder"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// DetectionConfig controls the detection strategies
type DetectionConfig struct {
	UseMetadata         bool    `mapstructure:"use_metadata"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	SizeFloorBytes      int64   `mapstructure:"size_floor_bytes"`
}

// FinderConfig controls concurrency and shutdown of the finder
type FinderConfig struct {
	Workers           int           `mapstructure:"workers"`
	ParallelThreshold int           `mapstructure:"parallel_threshold"`
	CloseTimeout      time.Duration `mapstructure:"close_timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// TracingConfig represents tracing configuration
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// EnvPrefix prefixes environment overrides, e.g. DUPEFINDER_FINDER_WORKERS
const EnvPrefix = "DUPEFINDER"

// Loader reads configuration from a file, the environment and defaults
type Loader struct {
	viper *viper.Viper
}

// NewConfigLoader creates a loader that searches for dupefinder.yaml in . and ./config
func NewConfigLoader() *Loader {
	v := viper.New()
	v.SetConfigName("dupefinder")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return &Loader{viper: v}
}

// SetConfigFile makes the loader read an explicit file instead of searching
func (l *Loader) SetConfigFile(path string) {
	l.viper.SetConfigFile(path)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("detection.use_metadata", true)
	v.SetDefault("detection.similarity_threshold", 0.85)
	v.SetDefault("detection.size_floor_bytes", int64(1024*1024))

	v.SetDefault("finder.workers", runtime.NumCPU())
	v.SetDefault("finder.parallel_threshold", 10000)
	v.SetDefault("finder.close_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "dupefinder")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "dupefinder")
}

// Load reads and validates the configuration
func (l *Loader) Load() (*Config, error) {
	if err := l.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	var config Config
	if err := l.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// Load loads the configuration from path, or searches the default locations when path is empty
func Load(path string) (*Config, error) {
	loader := NewConfigLoader()
	if path != "" {
		loader.SetConfigFile(path)
	}
	return loader.Load()
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Detection: DetectionConfig{
			UseMetadata:         true,
			SimilarityThreshold: 0.85,
			SizeFloorBytes:      1024 * 1024,
		},
		Finder: FinderConfig{
			Workers:           runtime.NumCPU(),
			ParallelThreshold: 10000,
			CloseTimeout:      10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Metrics: MetricsConfig{Namespace: "dupefinder"},
		Tracing: TracingConfig{ServiceName: "dupefinder"},
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Detection.SimilarityThreshold <= 0 || c.Detection.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got %v", c.Detection.SimilarityThreshold)
	}

	if c.Detection.SizeFloorBytes <= 0 {
		return fmt.Errorf("size floor must be positive")
	}

	if c.Finder.Workers < 1 {
		return fmt.Errorf("finder workers must be at least 1")
	}

	if c.Finder.ParallelThreshold < 1 {
		return fmt.Errorf("parallel threshold must be at least 1")
	}

	if c.Finder.CloseTimeout <= 0 {
		return fmt.Errorf("close timeout must be positive")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}

	return nil
}
