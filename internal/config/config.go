// Package config loads genui settings from defaults, a YAML file, GENUI_*
// environment variables, and explicitly set command-line flags, in that
// order of precedence (last wins).
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "GENUI_"

// Defaults.
const (
	DefaultAddr     = ":8080"
	DefaultRenderer = "html"
	DefaultTheme    = "default"
	DefaultModel    = "gemini-2.5-flash"
)

// FileNames are searched in the working directory when no --config is given.
var FileNames = []string{"genui.yaml", "genui.yml"}

// LLMConfig selects and configures the text generator.
type LLMConfig struct {
	Provider        string  `koanf:"provider"`
	Model           string  `koanf:"model"`
	APIKey          string  `koanf:"api_key"`
	StaticResponse  string  `koanf:"static_response"`
	MaxOutputTokens int     `koanf:"max_output_tokens"`
	Temperature     float64 `koanf:"temperature"`
	BaseURL         string  `koanf:"base_url"`
}

// StoreConfig selects where session grids live.
type StoreConfig struct {
	Driver string        `koanf:"driver"`
	DSN    string        `koanf:"dsn"`
	TTL    time.Duration `koanf:"ttl"`
}

// Config holds every setting the CLI and server read.
type Config struct {
	Addr               string        `koanf:"addr"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"`
	LogLevel           string        `koanf:"log_level"`
	LogFormat          string        `koanf:"log_format"`
	Renderer           string        `koanf:"renderer"`
	MaxDepth           int           `koanf:"max_depth"`
	EnforceChildPolicy bool          `koanf:"enforce_child_policy"`
	CatalogueDir       string        `koanf:"catalogue_dir"`
	TemplatesDir       string        `koanf:"templates_dir"`
	Theme              string        `koanf:"theme"`
	Variant            string        `koanf:"variant"`
	ThemesDir          string        `koanf:"themes_dir"`
	PresetFile         string        `koanf:"preset_file"`
	Instructions       string        `koanf:"instructions"`
	Color              bool          `koanf:"color"`
	LLM                LLMConfig     `koanf:"llm"`
	Store              StoreConfig   `koanf:"store"`

	// File is the config file that was read, empty when none was found.
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"addr":                  DefaultAddr,
		"shutdown_timeout":      "10s",
		"log_level":             "info",
		"log_format":            "text",
		"renderer":              DefaultRenderer,
		"max_depth":             32,
		"enforce_child_policy":  false,
		"theme":                 DefaultTheme,
		"variant":               "",
		"color":                 false,
		"llm.provider":          "static",
		"llm.model":             DefaultModel,
		"llm.static_response":   "",
		"llm.max_output_tokens": 0,
		"llm.temperature":       0.0,
		"llm.base_url":          "",
		"store.driver":          "memory",
		"store.dsn":             "genui.db",
		"store.ttl":             "24h",
	}
}

// Load reads configuration. cfgFile may be empty; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return Key(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return Key(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.File = path
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Key maps an env var suffix or flag name onto a config key:
// LLM_API_KEY and llm-api-key both become llm.api_key.
func Key(name string) string {
	key := strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	for _, section := range []string{"llm", "store"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range FileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	checks := []struct {
		key, value string
		allowed    []string
	}{
		{"log_level", c.LogLevel, []string{"debug", "info", "warn", "error"}},
		{"log_format", c.LogFormat, []string{"text", "json"}},
		{"llm.provider", c.LLM.Provider, []string{"static", "gemini"}},
		{"store.driver", c.Store.Driver, []string{"memory", "sqlite"}},
	}
	for _, check := range checks {
		if !slices.Contains(check.allowed, strings.ToLower(check.value)) {
			return fmt.Errorf("config: %s %q must be one of %s", check.key, check.value, strings.Join(check.allowed, ", "))
		}
	}
	if strings.TrimSpace(c.Renderer) == "" {
		return fmt.Errorf("config: renderer is required")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("config: max_depth must not be negative")
	}
	if c.LLM.Provider == "gemini" && c.LLM.APIKey == "" {
		return fmt.Errorf("config: llm.api_key is required for the gemini provider")
	}
	return nil
}
