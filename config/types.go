package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the broker connection details
type ServerConfig struct {
	URL          string        `mapstructure:"url"`
	Login        string        `mapstructure:"login"`
	Password     string        `mapstructure:"password"`
	APIVersion   string        `mapstructure:"api_version"`
	Timeout      time.Duration `mapstructure:"timeout"`
	StrictErrors bool          `mapstructure:"strict_errors"`
}

// FilterConfig contains named application filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
