// Package config resolves the report service settings from a .env file, an optional
// YAML file and the process environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Protocol-Lattice/growth-report/pkg/models"
)

const (
	DefaultProvider    = "zhipu"
	DefaultTextModel   = "glm-4"
	DefaultVisionModel = "glm-4v"
	DefaultTimeout     = 60 * time.Second
	DefaultAddr        = ":8080"
)

// ErrMissingCredential is returned when the selected provider needs an API key and none
// is set.
var ErrMissingCredential = errors.New("missing provider credential")

// credentialEnv lists, per provider, the variables checked for an API key in order.
var credentialEnv = map[string][]string{
	"zhipu":     {"ZHIPU_API_KEY"},
	"glm":       {"ZHIPU_API_KEY"},
	"openai":    {"OPENAI_API_KEY"},
	"gemini":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"google":    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"claude":    {"ANTHROPIC_API_KEY"},
	"ollama":    nil,
	"dummy":     nil,
}

type Config struct {
	Provider    string
	BaseURL     string
	TextModel   string
	VisionModel string
	Timeout     time.Duration
	Addr        string

	// APIKey only comes from the environment.
	APIKey string
}

// Load builds a Config. path may be empty, in which case REPORT_CONFIG is consulted. A
// missing .env file is skipped but a malformed one is an error, as is a missing YAML file
// that was asked for.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Provider:    DefaultProvider,
		TextModel:   DefaultTextModel,
		VisionModel: DefaultVisionModel,
		Timeout:     DefaultTimeout,
		Addr:        DefaultAddr,
	}

	if path == "" {
		path = os.Getenv("REPORT_CONFIG")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	names, known := credentialEnv[cfg.Provider]
	if !known {
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	for _, name := range names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			cfg.APIKey = v
			break
		}
	}
	if len(names) > 0 && cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set %s for provider %s", ErrMissingCredential, strings.Join(names, " or "), cfg.Provider)
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var file struct {
		Provider    string `yaml:"provider"`
		BaseURL     string `yaml:"base_url"`
		TextModel   string `yaml:"text_model"`
		VisionModel string `yaml:"vision_model"`
		Timeout     string `yaml:"timeout"`
		Addr        string `yaml:"addr"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	set(&c.Provider, file.Provider)
	set(&c.BaseURL, file.BaseURL)
	set(&c.TextModel, file.TextModel)
	set(&c.VisionModel, file.VisionModel)
	set(&c.Addr, file.Addr)
	if file.Timeout != "" {
		d, err := parseTimeout(file.Timeout)
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	set(&c.Provider, os.Getenv("REPORT_PROVIDER"))
	set(&c.BaseURL, os.Getenv("REPORT_BASE_URL"))
	set(&c.TextModel, os.Getenv("REPORT_TEXT_MODEL"))
	set(&c.VisionModel, os.Getenv("REPORT_VISION_MODEL"))
	set(&c.Addr, os.Getenv("REPORT_ADDR"))
	if v := strings.TrimSpace(os.Getenv("REPORT_TIMEOUT")); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("REPORT_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

func set(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// parseTimeout accepts a Go duration ("45s") or a bare number of seconds ("45").
func parseTimeout(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %q", v)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", v)
	}
	return d, nil
}

// ProviderConfig is the model client configuration. JSON mode is always on.
func (c *Config) ProviderConfig() models.ProviderConfig {
	return models.ProviderConfig{
		Provider:    c.Provider,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.TextModel,
		VisionModel: c.VisionModel,
		Timeout:     c.Timeout,
		JSONMode:    true,
	}
}
