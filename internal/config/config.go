// Package config provides configuration types and defaults for deskboard.
package config

import "time"

// Config holds all configuration for deskboard.
type Config struct {
	API         APIConfig         `yaml:"api" mapstructure:"api"`
	Charts      ChartsConfig      `yaml:"charts" mapstructure:"charts"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Notify      NotifyConfig      `yaml:"notify" mapstructure:"notify"`
	Actions     ActionsConfig     `yaml:"actions" mapstructure:"actions"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
}

// APIConfig holds helpdesk backend connection settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	SearchPath string        `yaml:"search_path" mapstructure:"search_path"` // Keyword search endpoint
	RateLimit  float64       `yaml:"rate_limit" mapstructure:"rate_limit"`   // Requests per second (0 = unlimited)
	RateBurst  int           `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// ChartsConfig holds chart refresh and export settings.
type ChartsConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
	Admin           bool          `yaml:"admin" mapstructure:"admin"`           // Mount the admin chart variants
	ExportDir       string        `yaml:"export_dir" mapstructure:"export_dir"` // Directory for PNG exports
	ExportWidth     int           `yaml:"export_width" mapstructure:"export_width"`
	ExportHeight    int           `yaml:"export_height" mapstructure:"export_height"`
}

// SearchConfig holds live search settings.
type SearchConfig struct {
	Debounce  time.Duration `yaml:"debounce" mapstructure:"debounce"`
	MinLength int           `yaml:"min_length" mapstructure:"min_length"` // Shorter queries clear results without a request
}

// NotifyConfig holds toast settings.
type NotifyConfig struct {
	AutoDismiss time.Duration `yaml:"auto_dismiss" mapstructure:"auto_dismiss"` // 0 = toasts stay until dismissed
}

// ActionsConfig holds mutation settings.
type ActionsConfig struct {
	ReloadDelay time.Duration `yaml:"reload_delay" mapstructure:"reload_delay"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PathsConfig holds file paths.
type PathsConfig struct {
	Log string `yaml:"log" mapstructure:"log"`
}

// LogRotationConfig holds settings for log file rotation.
// Used for the TUI debug log (lumberjack-based automatic rotation).
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8080",
			Timeout:    15 * time.Second,
			SearchPath: "/api/tickets/search",
			RateLimit:  10,
			RateBurst:  20,
		},
		Charts: ChartsConfig{
			RefreshInterval: 5 * time.Minute,
			Admin:           false,
			ExportDir:       ".",
			ExportWidth:     640,
			ExportHeight:    480,
		},
		Search: SearchConfig{
			Debounce:  300 * time.Millisecond,
			MinLength: 2,
		},
		Notify: NotifyConfig{
			AutoDismiss: 5 * time.Second,
		},
		Actions: ActionsConfig{
			ReloadDelay: time.Second,
			Timeout:     15 * time.Second,
		},
		Paths: PathsConfig{
			Log: ".deskboard/deskboard.log",
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
