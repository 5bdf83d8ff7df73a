// Package config loads htmlbox settings from defaults, an optional config
// file and HTMLBOX_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"htmlbox/pkg/css"
)

// EnvPrefix prefixes environment overrides, e.g. HTMLBOX_RENDER_WIDTH.
const EnvPrefix = "HTMLBOX"

// Config holds every setting.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Render RenderConfig `mapstructure:"render" yaml:"render"`
	Fetch  FetchConfig  `mapstructure:"fetch" yaml:"fetch"`
}

// LoggerConfig configures the zap logger and its rotating file sink.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color of each level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// RenderConfig describes the viewport and the default look.
type RenderConfig struct {
	Width int `mapstructure:"width" yaml:"width"`
	// Height 0 sizes the output to the document.
	Height     int    `mapstructure:"height" yaml:"height"`
	Media      string `mapstructure:"media" yaml:"media"`
	FontFamily string `mapstructure:"font_family" yaml:"font_family"`
	// FontDir holds extra .ttf files registered under their base names.
	FontDir    string `mapstructure:"font_dir" yaml:"font_dir"`
	Background string `mapstructure:"background" yaml:"background"`
	MasterCSS  string `mapstructure:"master_css" yaml:"master_css"`
}

// FetchConfig configures network and file access.
type FetchConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
	RateLimit     float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	MaxConcurrent int           `mapstructure:"max_concurrent" yaml:"max_concurrent"`
	BaseDir       string        `mapstructure:"base_dir" yaml:"base_dir"`
}

// SetDefaults registers the default of every setting.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "htmlbox")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Render --
	v.SetDefault("render.width", 800)
	v.SetDefault("render.height", 0)
	v.SetDefault("render.media", "screen")
	v.SetDefault("render.font_family", "Go")
	v.SetDefault("render.font_dir", "")
	v.SetDefault("render.background", "white")
	v.SetDefault("render.master_css", "")

	// -- Fetch --
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.rate_limit", 0)
	v.SetDefault("fetch.max_concurrent", 4)
	v.SetDefault("fetch.base_dir", "")
}

// NewDefaultConfig returns the defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewViper returns a viper instance with defaults and environment binding.
// A non-empty file is read as the config file.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if file != "" {
		path, err := homedir.Expand(file)
		if err != nil {
			return nil, fmt.Errorf("expanding config path: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return v, nil
}

// NewConfigFromViper decodes, expands and validates the settings in v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads file (optional) and the environment.
func Load(file string) (*Config, error) {
	v, err := NewViper(file)
	if err != nil {
		return nil, err
	}
	return NewConfigFromViper(v)
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Logger.LogFile, &c.Render.FontDir, &c.Fetch.BaseDir} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the settings for sane values.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Render.Width <= 0 {
		return fmt.Errorf("render.width must be a positive integer")
	}
	if c.Render.Height < 0 {
		return fmt.Errorf("render.height must not be negative")
	}
	if _, ok := css.ParseColor(c.Render.Background); !ok {
		return fmt.Errorf("render.background %q is not a color", c.Render.Background)
	}
	if c.Fetch.MaxConcurrent <= 0 {
		return fmt.Errorf("fetch.max_concurrent must be a positive integer")
	}
	if c.Fetch.RateLimit < 0 {
		return fmt.Errorf("fetch.rate_limit must not be negative")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	return nil
}

// BackgroundColor returns the parsed render.background.
func (c *Config) BackgroundColor() css.Color {
	col, _ := css.ParseColor(c.Render.Background)
	return col
}
