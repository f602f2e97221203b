// Package config holds runtime and CLI configuration loaded through viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full configuration tree.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Runtime RuntimeConfig `mapstructure:"runtime" yaml:"runtime"`
	Render  RenderConfig  `mapstructure:"render" yaml:"render"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// RuntimeConfig configures a runtime instance.
type RuntimeConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
	// MaxFPS caps the frame ticker; zero uses 60.
	MaxFPS int  `mapstructure:"max_fps" yaml:"max_fps"`
	Debug  bool `mapstructure:"debug" yaml:"debug"`

	// DebugAddr is where the debug server listens when Debug is set.
	DebugAddr string `mapstructure:"debug_addr" yaml:"debug_addr"`
}

// RenderConfig configures offscreen rendering.
type RenderConfig struct {
	Background string `mapstructure:"background" yaml:"background"`
	Output     string `mapstructure:"output" yaml:"output"`

	// Scale is device pixels per logical unit.
	Scale float64 `mapstructure:"scale" yaml:"scale"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "weave")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", false)

	// -- Runtime --
	v.SetDefault("runtime.width", 800)
	v.SetDefault("runtime.height", 600)
	v.SetDefault("runtime.max_fps", 60)
	v.SetDefault("runtime.debug", false)
	v.SetDefault("runtime.debug_addr", "127.0.0.1:7420")

	// -- Render --
	v.SetDefault("render.background", "#ffffff")
	v.SetDefault("render.output", "out.png")
	v.SetDefault("render.scale", 1.0)
}

// NewDefaultConfig returns a Config populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	if err != nil {
		// Defaults are static and always valid.
		panic(err)
	}
	return cfg
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logger.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be \"console\" or \"json\", got %q", c.Logger.Format)
	}
	if c.Runtime.Width <= 0 || c.Runtime.Height <= 0 {
		return fmt.Errorf("runtime.width and runtime.height must be positive, got %dx%d", c.Runtime.Width, c.Runtime.Height)
	}
	if c.Runtime.MaxFPS < 0 {
		return fmt.Errorf("runtime.max_fps must not be negative")
	}
	if c.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be positive, got %g", c.Render.Scale)
	}
	return nil
}
