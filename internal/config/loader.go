package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// ConfigPaths defines the search locations for config files.
const (
	// GlobalConfigDir is the XDG config directory name
	GlobalConfigDir = "deskboard"
	// GlobalConfigFile is the global config file name
	GlobalConfigFile = "config.yaml"
	// ProjectConfigDir is the project-local config directory
	ProjectConfigDir = ".deskboard"
	// ProjectConfigFile is the project-local config file name
	ProjectConfigFile = "config.yaml"
	// DotEnvFile is loaded into the process environment before config
	// resolution so DESKBOARD_* overrides can live next to the project.
	DotEnvFile = ".env"
)

// Minimum accepted intervals. Anything shorter would hammer the backend.
const (
	MinRefreshInterval = time.Second
	MinDebounce        = 0
)

// MinExportDimension is the smallest accepted export width or height.
const MinExportDimension = 64

// LoadDotEnv loads DotEnvFile (or the given files) into the environment.
// Variables already set in the environment win. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{DotEnvFile}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from files and viper settings.
// Precedence (later overrides earlier):
//  1. Default() values
//  2. ~/.config/deskboard/config.yaml (global)
//  3. .deskboard/config.yaml (project)
//  4. --config file
//  5. Environment variables (DESKBOARD_*)
//  6. CLI flags (already bound to viper)
//
// Missing config files are silently ignored. The result is validated.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := Default()

	defaultMap, err := structToMap(cfg)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(defaultMap); err != nil {
		return nil, err
	}

	for _, path := range []string{globalConfigPath(), projectConfigPath()} {
		if path == "" {
			continue
		}
		if err := loadConfigFile(v, path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// Explicit config must exist
	if explicitPath := v.GetString("config"); explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return nil, err
		}
		if err := loadConfigFile(v, explicitPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", explicitPath, err)
		}
	}

	if err := v.Unmarshal(cfg, viperDecodeHook()); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for values the dashboard cannot run with.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q must be an absolute URL", c.API.BaseURL))
	}
	if c.Charts.RefreshInterval < MinRefreshInterval {
		errs = append(errs, fmt.Errorf("charts.refresh_interval %v is below the %v minimum", c.Charts.RefreshInterval, MinRefreshInterval))
	}
	if c.Search.Debounce < MinDebounce {
		errs = append(errs, fmt.Errorf("search.debounce must not be negative"))
	}
	if c.Search.MinLength < 0 {
		errs = append(errs, fmt.Errorf("search.min_length must not be negative"))
	}
	if c.Notify.AutoDismiss < 0 {
		errs = append(errs, fmt.Errorf("notify.auto_dismiss must not be negative"))
	}
	if c.Actions.ReloadDelay < 0 {
		errs = append(errs, fmt.Errorf("actions.reload_delay must not be negative"))
	}
	if c.Charts.ExportWidth < MinExportDimension || c.Charts.ExportHeight < MinExportDimension {
		errs = append(errs, fmt.Errorf("charts.export_width and export_height must be at least %d", MinExportDimension))
	}

	return errors.Join(errs...)
}

// globalConfigPath returns the global config file path if it exists.
func globalConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}

	path := filepath.Join(configDir, GlobalConfigDir, GlobalConfigFile)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// projectConfigPath returns the project config file path if it exists.
func projectConfigPath() string {
	path := filepath.Join(ProjectConfigDir, ProjectConfigFile)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// loadConfigFile reads a YAML file through a scratch viper and merges its
// settings into v.
func loadConfigFile(v *viper.Viper, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer func() { _ = file.Close() }()

	fileViper := viper.New()
	fileViper.SetConfigType("yaml")
	if err := fileViper.ReadConfig(file); err != nil {
		return err
	}

	return v.MergeConfigMap(fileViper.AllSettings())
}

// viperDecodeHook returns the decoder config with duration hook.
func viperDecodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// structToMap converts a struct to a map for viper.MergeConfigMap.
func structToMap(cfg *Config) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  &result,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			durationToStringHook(),
		),
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}

	return result, nil
}

// durationToStringHook converts time.Duration to string for YAML compatibility.
func durationToStringHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if from != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		return data.(time.Duration).String(), nil
	}
}
