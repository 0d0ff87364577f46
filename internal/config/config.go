// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for semchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.semchat/config.toml
//   - ~/.semchat/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/jeranaias/semchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete semchat configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Query service connection
	Service ServiceConfig `toml:"service" json:"service"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// Transcript export configuration
	Export ExportConfig `toml:"export" json:"export"`
}

// ServiceConfig contains the query service connection settings.
type ServiceConfig struct {
	// URL is the base URL of the query service
	URL string `toml:"url" json:"url"`
	// RequestTimeoutSecs bounds each request in seconds (0 = no timeout)
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
	// HealthPath is the path of the health endpoint
	HealthPath string `toml:"health_path" json:"health_path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the color theme: "auto", "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
	// Markdown renders answers as markdown
	Markdown bool `toml:"markdown" json:"markdown"`
	// ShowProvenance shows the source/type line under each answer
	ShowProvenance bool `toml:"show_provenance" json:"show_provenance"`
	// ShowSimilarity shows the cache similarity score when reported
	ShowSimilarity bool `toml:"show_similarity" json:"show_similarity"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error, disabled
	Level string `toml:"level" json:"level"`
	// File is where the TUI writes its log (empty = ~/.semchat/semchat.log)
	File string `toml:"file" json:"file"`
}

// ExportConfig contains transcript export configuration.
type ExportConfig struct {
	// Directory receives exported transcripts (empty = ~/.semchat/exports)
	Directory string `toml:"directory" json:"directory"`
	// Format is the default export format: "markdown" or "json"
	Format string `toml:"format" json:"format"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",
		Service: ServiceConfig{
			URL:                "http://localhost:8000",
			RequestTimeoutSecs: 0,
			HealthPath:         "/health",
		},
		UI: UIConfig{
			Theme:          "auto",
			Markdown:       true,
			ShowProvenance: true,
			ShowSimilarity: true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Export: ExportConfig{
			Format: "markdown",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the semchat configuration directory path.
// SEMCHAT_HOME overrides the default ~/.semchat.
func ConfigDir() (string, error) {
	if dir := os.Getenv("SEMCHAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".semchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// LogFilePath returns the configured log file, or the default in the config dir.
func (c *Config) LogFilePath() (string, error) {
	if c.Logging.File != "" {
		return expandHome(c.Logging.File)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "semchat.log"), nil
}

// ExportDir returns the configured export directory, or the default in the config dir.
func (c *Config) ExportDir() (string, error) {
	if c.Export.Directory != "" {
		return expandHome(c.Export.Directory)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "exports"), nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "could not determine home directory")
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return errors.Wrapf(err, "failed to fix permissions (was %o)", mode)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
//
// A file that exists but cannot be decoded is reported alongside the default
// configuration, which is still returned.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = errors.Wrap(err, "failed to load TOML config")
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = errors.Wrap(err, "failed to load JSON config")
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Default(), errors.Wrap(err, "invalid config")
	}
	return cfg, loadErr
}

// finish applies environment overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file on top of cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return errors.Wrap(err, "failed to decode TOML file")
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file on top of cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read JSON file")
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "failed to decode JSON file")
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, errors.Wrapf(err, "failed to load JSON config from %s", path)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, errors.Wrapf(err, "failed to load TOML config from %s", path)
		}
	}

	return finish(cfg)
}

// fillDefaults fills in any missing string values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Service.URL == "" {
		cfg.Service.URL = defaults.Service.URL
	}
	if cfg.Service.HealthPath == "" {
		cfg.Service.HealthPath = defaults.Service.HealthPath
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = defaults.Export.Format
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# semchat configuration file")
	fmt.Fprintln(&buf, "# Generated by semchat - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Valid option sets.
var (
	validThemes        = []string{"auto", "dark", "light"}
	validLogLevels     = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}
	validExportFormats = []string{"markdown", "md", "json"}
)

// MaxRequestTimeoutSecs caps service.request_timeout_secs.
const MaxRequestTimeoutSecs = 3600

// Validate validates the configuration and returns ValidateErrors on failure.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Service.URL == "" {
		errs = append(errs, ValidationError{Field: "service.url", Message: "must not be empty"})
	} else if u, err := url.Parse(c.Service.URL); err != nil {
		errs = append(errs, ValidationError{Field: "service.url", Message: fmt.Sprintf("invalid URL: %v", err)})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{Field: "service.url", Message: "scheme must be http or https"})
	} else if u.Host == "" {
		errs = append(errs, ValidationError{Field: "service.url", Message: "missing host"})
	}

	if c.Service.RequestTimeoutSecs < 0 || c.Service.RequestTimeoutSecs > MaxRequestTimeoutSecs {
		errs = append(errs, ValidationError{
			Field:   "service.request_timeout_secs",
			Message: fmt.Sprintf("must be between 0 and %d", MaxRequestTimeoutSecs),
		})
	}

	if !strings.HasPrefix(c.Service.HealthPath, "/") {
		errs = append(errs, ValidationError{Field: "service.health_path", Message: "must start with /"})
	}

	if !contains(validThemes, c.UI.Theme) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validThemes, ", ")),
		})
	}

	if !contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validLogLevels, ", ")),
		})
	}

	if !contains(validExportFormats, strings.ToLower(c.Export.Format)) {
		errs = append(errs, ValidationError{
			Field:   "export.format",
			Message: fmt.Sprintf("must be one of %s", strings.Join(validExportFormats, ", ")),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing configuration fields.
func (c *Config) SetDefaults() {
	_ = fillDefaults(c)
	c.Service.URL = strings.TrimSuffix(strings.TrimSpace(c.Service.URL), "/")
	if c.Service.HealthPath != "" && !strings.HasPrefix(c.Service.HealthPath, "/") {
		c.Service.HealthPath = "/" + c.Service.HealthPath
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if strings.EqualFold(c.Export.Format, "md") {
		c.Export.Format = "markdown"
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - SEMCHAT_SERVICE_URL: overrides service.url
//   - SEMCHAT_REQUEST_TIMEOUT: overrides service.request_timeout_secs
//   - SEMCHAT_LOG_LEVEL: overrides logging.level
//   - SEMCHAT_LOG_FILE: overrides logging.file
//   - SEMCHAT_THEME: overrides ui.theme
//   - SEMCHAT_NO_MARKDOWN: set to "1" or "true" to disable markdown rendering
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("SEMCHAT_SERVICE_URL"); u != "" {
		c.Service.URL = u
	}

	if timeout := os.Getenv("SEMCHAT_REQUEST_TIMEOUT"); timeout != "" {
		secs, err := strconv.Atoi(timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: ignoring SEMCHAT_REQUEST_TIMEOUT=%q: not an integer\n", timeout)
		} else {
			c.Service.RequestTimeoutSecs = secs
		}
	}

	if level := os.Getenv("SEMCHAT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	if file := os.Getenv("SEMCHAT_LOG_FILE"); file != "" {
		c.Logging.File = file
	}

	if theme := os.Getenv("SEMCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if noMD := os.Getenv("SEMCHAT_NO_MARKDOWN"); noMD != "" {
		if parseBool(noMD) {
			c.UI.Markdown = false
		}
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// ErrUnknownKey is returned by Get and Set for a key that names no field.
// GetAllKeys lists the valid ones.
var ErrUnknownKey = errors.New("unknown key")

// Get retrieves a configuration value using dot notation (e.g., "service.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "service.url").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return errors.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the dotted key to a leaf field.
func (c *Config) lookup(key string) (reflect.Value, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, errors.Wrapf(ErrUnknownKey, "%s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, errors.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, errors.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, errors.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strings.TrimSpace(strVal), 10, 64)
			if err != nil {
				return errors.Errorf("invalid integer value: %q", strVal)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			switch strings.ToLower(strings.TrimSpace(strVal)) {
			case "1", "true", "yes", "on":
				field.SetBool(true)
			case "0", "false", "no", "off":
				field.SetBool(false)
			default:
				return errors.Errorf("invalid boolean value: %q", strVal)
			}
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return errors.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return errors.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation, sorted.
func GetAllKeys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("toml"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, name, keys)
			continue
		}
		*keys = append(*keys, name)
	}
}

// Clone creates a copy of the configuration.
// Config holds only value fields, so a struct copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as indented JSON.
// Userinfo in the service URL is redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if u, err := url.Parse(safe.Service.URL); err == nil && u.User != nil {
		u.User = url.User("REDACTED")
		safe.Service.URL = u.String()
	}

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// RequestTimeout returns the service request timeout (zero means none).
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Service.RequestTimeoutSecs) * time.Second
}
