// Package config provides configuration management for pagekit using Viper
// for flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files and environment variable
// overrides with the PAGEKIT_ prefix. It manages the contact form pipeline
// (debounce, submission timeout, honeypot), the asset optimization pipeline,
// SEO metadata, and the preview server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	pkerrors "github.com/conneroisu/pagekit/internal/errors"
	"github.com/conneroisu/pagekit/internal/forms"
)

type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Assets  AssetsConfig  `yaml:"assets" mapstructure:"assets"`
	Forms   FormsConfig   `yaml:"forms" mapstructure:"forms"`
	SEO     SEOConfig     `yaml:"seo" mapstructure:"seo"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

type ServerConfig struct {
	Port       int    `yaml:"port" mapstructure:"port"`
	Host       string `yaml:"host" mapstructure:"host"`
	LiveReload bool   `yaml:"live_reload" mapstructure:"live_reload"`
}

type AssetsConfig struct {
	SourceDir   string   `yaml:"source_dir" mapstructure:"source_dir"`
	OutputDir   string   `yaml:"output_dir" mapstructure:"output_dir"`
	JPEGQuality int      `yaml:"jpeg_quality" mapstructure:"jpeg_quality"`
	Precompress bool     `yaml:"precompress" mapstructure:"precompress"`
	Ignore      []string `yaml:"ignore" mapstructure:"ignore"`
}

type FormsConfig struct {
	HoneypotField string        `yaml:"honeypot_field" mapstructure:"honeypot_field"`
	DebounceDelay time.Duration `yaml:"debounce_delay" mapstructure:"debounce_delay"`
	SubmitTimeout time.Duration `yaml:"submit_timeout" mapstructure:"submit_timeout"`
	SuccessNotice time.Duration `yaml:"success_notice" mapstructure:"success_notice"`
	GradeTokens   []string      `yaml:"grade_tokens" mapstructure:"grade_tokens"`
}

type SEOConfig struct {
	Title       string `yaml:"title" mapstructure:"title"`
	Description string `yaml:"description" mapstructure:"description"`
	Canonical   string `yaml:"canonical" mapstructure:"canonical"`
	SiteName    string `yaml:"site_name" mapstructure:"site_name"`
	Image       string `yaml:"image" mapstructure:"image"`
	TwitterCard string `yaml:"twitter_card" mapstructure:"twitter_card"`
	Robots      string `yaml:"robots" mapstructure:"robots"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load builds a Config from viper's merged sources and applies defaults.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Workarounds for viper slice/bool handling when values come from env.
	if viper.IsSet("assets.ignore") && len(config.Assets.Ignore) == 0 {
		config.Assets.Ignore = viper.GetStringSlice("assets.ignore")
	}
	if viper.IsSet("forms.grade_tokens") && len(config.Forms.GradeTokens) == 0 {
		config.Forms.GradeTokens = viper.GetStringSlice("forms.grade_tokens")
	}
	if viper.IsSet("server.live_reload") {
		config.Server.LiveReload = viper.GetBool("server.live_reload")
	}

	ApplyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyDefaults fills zero values with sensible defaults.
func ApplyDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if !viper.IsSet("server.live_reload") {
		config.Server.LiveReload = true
	}

	if config.Assets.SourceDir == "" {
		config.Assets.SourceDir = "assets"
	}
	if config.Assets.OutputDir == "" {
		config.Assets.OutputDir = "dist"
	}
	if config.Assets.JPEGQuality == 0 {
		config.Assets.JPEGQuality = 82
	}
	if !viper.IsSet("assets.precompress") {
		config.Assets.Precompress = true
	}
	if len(config.Assets.Ignore) == 0 {
		config.Assets.Ignore = []string{"node_modules", ".git"}
	}

	if config.Forms.HoneypotField == "" {
		config.Forms.HoneypotField = "website"
	}
	if config.Forms.DebounceDelay == 0 {
		config.Forms.DebounceDelay = 500 * time.Millisecond
	}
	if config.Forms.SubmitTimeout == 0 {
		config.Forms.SubmitTimeout = 10 * time.Second
	}
	if config.Forms.SuccessNotice == 0 {
		config.Forms.SuccessNotice = 5 * time.Second
	}
	if len(config.Forms.GradeTokens) == 0 {
		config.Forms.GradeTokens = DefaultGradeTokens()
	}

	if config.SEO.TwitterCard == "" {
		config.SEO.TwitterCard = "summary_large_image"
	}
	if config.SEO.Robots == "" {
		config.SEO.Robots = "index, follow"
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
}

// DefaultGradeTokens returns the grade selection values accepted by the
// contact form.
func DefaultGradeTokens() []string {
	return forms.DefaultGradeTokens()
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return pkerrors.NewConfigError(pkerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("server port %d out of range", c.Server.Port))
	}
	if c.Assets.JPEGQuality < 1 || c.Assets.JPEGQuality > 100 {
		return pkerrors.NewConfigError(pkerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("jpeg quality %d out of range", c.Assets.JPEGQuality))
	}
	if c.Forms.DebounceDelay < 0 || c.Forms.SubmitTimeout < 0 || c.Forms.SuccessNotice < 0 {
		return pkerrors.NewConfigError(pkerrors.ErrCodeConfigInvalid,
			"form durations must not be negative")
	}
	if strings.TrimSpace(c.Forms.HoneypotField) == "" {
		return pkerrors.NewConfigError(pkerrors.ErrCodeConfigInvalid,
			"forms.honeypot_field must not be empty")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return pkerrors.NewConfigError(pkerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown logging format %q", c.Logging.Format))
	}

	return nil
}
