// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"inmova/bank-import/internal/detector"
	"inmova/bank-import/internal/export"
	"inmova/bank-import/internal/factory"
	"inmova/bank-import/internal/logging"
	"inmova/bank-import/internal/norma43parser"
	"inmova/bank-import/internal/pipeline"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "BANKIMPORT"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Rules struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"rules" yaml:"rules"`

	Companies struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"companies" yaml:"companies"`

	Norma43 struct {
		CenturyPivot         int  `mapstructure:"century_pivot" yaml:"century_pivot"`
		MaxDescriptionLength int  `mapstructure:"max_description_length" yaml:"max_description_length"`
		AllowShortLines      bool `mapstructure:"allow_short_lines" yaml:"allow_short_lines"`
	} `mapstructure:"norma43" yaml:"norma43"`

	Detection struct {
		SniffBytes int `mapstructure:"sniff_bytes" yaml:"sniff_bytes"`
	} `mapstructure:"detection" yaml:"detection"`

	Export struct {
		Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
		DateFormat string `mapstructure:"date_format" yaml:"date_format"`
	} `mapstructure:"export" yaml:"export"`

	Server struct {
		Addr        string `mapstructure:"addr" yaml:"addr"`
		MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	} `mapstructure:"server" yaml:"server"`

	Database struct {
		URL string `mapstructure:"url" yaml:"-"` // Never serialize credentials
	} `mapstructure:"database" yaml:"database"`
}

// InitializeConfig loads defaults, then config.yaml from the standard
// locations, then BANKIMPORT_* environment variables.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load is InitializeConfig with an explicit config file. An empty path
// searches $HOME/.bank-import, .bank-import and the working directory.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.bank-import")
		v.AddConfigPath(".bank-import")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("rules.file", "rules.yaml")
	v.SetDefault("companies.file", "companies.yaml")

	v.SetDefault("norma43.century_pivot", 50)
	v.SetDefault("norma43.max_description_length", norma43parser.DefaultMaxDescriptionLength)
	v.SetDefault("norma43.allow_short_lines", false)

	v.SetDefault("detection.sniff_bytes", detector.DefaultSniffBytes)

	v.SetDefault("export.delimiter", string(export.DefaultDelimiter))
	v.SetDefault("export.date_format", export.DefaultDateFormat)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 10)

	v.SetDefault("database.url", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Norma43.CenturyPivot < 0 || config.Norma43.CenturyPivot > 99 {
		return fmt.Errorf("norma43.century_pivot must be between 0 and 99, got: %d", config.Norma43.CenturyPivot)
	}

	if config.Norma43.MaxDescriptionLength < 1 {
		return fmt.Errorf("norma43.max_description_length must be positive, got: %d", config.Norma43.MaxDescriptionLength)
	}

	if config.Detection.SniffBytes < 64 {
		return fmt.Errorf("detection.sniff_bytes must be at least 64, got: %d", config.Detection.SniffBytes)
	}

	if utf8.RuneCountInString(config.Export.Delimiter) != 1 {
		return fmt.Errorf("export delimiter must be a single character, got: %s", config.Export.Delimiter)
	}

	if config.Server.MaxUploadMB < 1 || config.Server.MaxUploadMB > 100 {
		return fmt.Errorf("server.max_upload_mb must be between 1 and 100, got: %d", config.Server.MaxUploadMB)
	}

	return nil
}

// NewLogger builds the application logger from the log section.
func (c *Config) NewLogger() logging.Logger {
	return logging.NewLogrusAdapter(c.Log.Level, c.Log.Format)
}

// Norma43Options maps the norma43 section onto parser options.
func (c *Config) Norma43Options() norma43parser.Options {
	return norma43parser.Options{
		CenturyPivot:         c.Norma43.CenturyPivot,
		MaxDescriptionLength: c.Norma43.MaxDescriptionLength,
		AllowShortLines:      c.Norma43.AllowShortLines,
	}
}

// PipelineConfig maps the detection and norma43 sections.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		Detector: detector.Detector{
			SniffBytes:      c.Detection.SniffBytes,
			AllowShortLines: c.Norma43.AllowShortLines,
		},
		Parsers: factory.Options{Norma43: c.Norma43Options()},
	}
}

// ExportOptions maps the export section.
func (c *Config) ExportOptions() export.Options {
	r, _ := utf8.DecodeRuneInString(c.Export.Delimiter)
	return export.Options{Delimiter: r, DateFormat: c.Export.DateFormat}
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
