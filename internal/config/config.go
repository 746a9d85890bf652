// Package config loads pagemark configuration from defaults, YAML files and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// classNamePattern matches a single CSS class identifier. Empty means the
// default class.
var classNamePattern = regexp.MustCompile(`^-?[_a-zA-Z][_a-zA-Z0-9-]*$`)

// Output formats understood by the renderers.
const (
	FormatHTML = "html"
	FormatText = "text"
	FormatJSON = "json"
)

// Project config file names, in lookup order.
var projectConfigNames = []string{".pagemark.yaml", ".pagemark.yml"}

// Config represents the complete pagemark configuration.
type Config struct {
	Version     int               `yaml:"version" json:"version"`
	Highlight   HighlightConfig   `yaml:"highlight" json:"highlight"`
	Render      RenderConfig      `yaml:"render" json:"render"`
	Performance PerformanceConfig `yaml:"performance" json:"performance"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
}

// HighlightConfig configures keyword matching and markup.
type HighlightConfig struct {
	// Keyword is the text to highlight. Required before a run.
	Keyword string `yaml:"keyword" json:"keyword"`
	// CaseSensitive selects exact matching (default: true).
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`
	// ClassName is the class of the highlight element (default: highlighted-text).
	ClassName string `yaml:"class_name" json:"class_name"`
	// MergeFragmentRanges gives each fragment a single rewrite marking every
	// range touching it. When false the last match touching a fragment wins.
	MergeFragmentRanges bool `yaml:"merge_fragment_ranges" json:"merge_fragment_ranges"`
}

// RenderConfig configures page rendering and output.
type RenderConfig struct {
	// Scale is the viewport scale passed to page rendering (default: 1.4).
	Scale float64 `yaml:"scale" json:"scale"`
	// Format is the output format: html, text or json (default: html).
	Format string `yaml:"format" json:"format"`
	// NoColor disables colors in text output.
	NoColor bool `yaml:"no_color" json:"no_color"`
}

// PerformanceConfig configures concurrency and caching.
type PerformanceConfig struct {
	// PageWorkers bounds the number of pages processed concurrently.
	PageWorkers int `yaml:"page_workers" json:"page_workers"`
	// CacheSize is the number of page results kept for watch re-runs.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
	// WatchDebounce is the quiet period before a watch re-run (e.g. "300ms").
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Highlight: HighlightConfig{
			Keyword:       "",
			CaseSensitive: true,
			ClassName:     "highlighted-text",
		},
		Render: RenderConfig{
			Scale:  1.4,
			Format: FormatHTML,
		},
		Performance: PerformanceConfig{
			PageWorkers:   runtime.NumCPU(),
			CacheSize:     256,
			WatchDebounce: "300ms",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/pagemark/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/pagemark/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pagemark", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "pagemark", "config.yaml")
	}
	return filepath.Join(home, ".config", "pagemark", "config.yaml")
}

// ProjectConfigPath returns the project config file in dir, or "" if none exists.
func ProjectConfigPath(dir string) string {
	for _, name := range projectConfigNames {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// Load loads configuration for the given working directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/pagemark/config.yaml)
//  3. Project config (.pagemark.yaml in dir)
//  4. Environment variables (PAGEMARK_*)
//
// The keyword is not required here; callers validate it once flags are applied.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if projectPath := ProjectConfigPath(dir); projectPath != "" {
		if err := cfg.loadYAML(projectPath); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadYAML decodes path over c. Keys absent from the file keep their current
// values, so explicit false and zero values in the file are honored.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies PAGEMARK_* environment variable overrides.
// Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PAGEMARK_KEYWORD"); v != "" {
		c.Highlight.Keyword = v
	}
	if v := os.Getenv("PAGEMARK_CASE_SENSITIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Highlight.CaseSensitive = b
		}
	}
	if v := os.Getenv("PAGEMARK_FORMAT"); v != "" {
		c.Render.Format = strings.ToLower(v)
	}
	if v := os.Getenv("PAGEMARK_SCALE"); v != "" {
		if s, err := strconv.ParseFloat(v, 64); err == nil {
			c.Render.Scale = s
		}
	}
	if v := os.Getenv("PAGEMARK_PAGE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Performance.PageWorkers = n
		}
	}
	if v := os.Getenv("PAGEMARK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	// NO_COLOR is a cross-tool convention: presence disables color.
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.Render.NoColor = true
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Render.Scale <= 0 || c.Render.Scale > 10 {
		return fmt.Errorf("render.scale must be in (0, 10], got %g", c.Render.Scale)
	}

	switch strings.ToLower(c.Render.Format) {
	case FormatHTML, FormatText, FormatJSON:
	default:
		return fmt.Errorf("render.format must be 'html', 'text' or 'json', got %s", c.Render.Format)
	}

	if c.Performance.PageWorkers < 1 {
		return fmt.Errorf("performance.page_workers must be at least 1, got %d", c.Performance.PageWorkers)
	}
	if c.Performance.CacheSize < 0 {
		return fmt.Errorf("performance.cache_size must be non-negative, got %d", c.Performance.CacheSize)
	}
	if _, err := c.WatchDebounce(); err != nil {
		return err
	}

	if c.Highlight.ClassName != "" && !classNamePattern.MatchString(c.Highlight.ClassName) {
		return fmt.Errorf("highlight.class_name must be a single CSS class, got %q", c.Highlight.ClassName)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WatchDebounce parses Performance.WatchDebounce. Empty means zero.
func (c *Config) WatchDebounce() (time.Duration, error) {
	if c.Performance.WatchDebounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Performance.WatchDebounce)
	if err != nil {
		return 0, fmt.Errorf("performance.watch_debounce: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("performance.watch_debounce must be non-negative, got %s", d)
	}
	return d, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
