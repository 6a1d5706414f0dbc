package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configEnv = []string{
	"REPORT_CONFIG", "REPORT_PROVIDER", "REPORT_BASE_URL", "REPORT_TEXT_MODEL",
	"REPORT_VISION_MODEL", "REPORT_TIMEOUT", "REPORT_ADDR",
	"ZHIPU_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "ANTHROPIC_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnv {
		t.Setenv(name, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ZHIPU_API_KEY", "zk")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "zhipu" || cfg.TextModel != "glm-4" || cfg.VisionModel != "glm-4v" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeout != 60*time.Second || cfg.Addr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.APIKey != "zk" {
		t.Fatalf("APIKey = %q", cfg.APIKey)
	}
}

func TestLoadMissingCredential(t *testing.T) {
	clearEnv(t)
	_, err := Load("")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestLoadProvidersWithoutCredential(t *testing.T) {
	for _, provider := range []string{"ollama", "dummy", "Ollama"} {
		t.Run(provider, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("REPORT_PROVIDER", provider)
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.APIKey != "" {
				t.Fatalf("APIKey = %q", cfg.APIKey)
			}
		})
	}
}

func TestLoadGeminiFallsBackToGoogleKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPORT_PROVIDER", "gemini")
	t.Setenv("GOOGLE_API_KEY", "gk")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "gk" {
		t.Fatalf("APIKey = %q", cfg.APIKey)
	}
}

func TestLoadUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPORT_PROVIDER", "watson")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
provider: openai
base_url: http://localhost:9999/v1
text_model: gpt-4o-mini
vision_model: gpt-4o
timeout: 45s
addr: ":9090"
`)
	t.Setenv("OPENAI_API_KEY", "ok")
	t.Setenv("REPORT_TEXT_MODEL", "gpt-4.1-mini")
	t.Setenv("REPORT_TIMEOUT", "30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" || cfg.BaseURL != "http://localhost:9999/v1" || cfg.VisionModel != "gpt-4o" || cfg.Addr != ":9090" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.TextModel != "gpt-4.1-mini" {
		t.Fatalf("env must override file, TextModel = %q", cfg.TextModel)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPORT_CONFIG", writeYAML(t, "provider: dummy\n"))
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "dummy" {
		t.Fatalf("Provider = %q", cfg.Provider)
	}
}

func TestLoadBadInputs(t *testing.T) {
	cases := []struct {
		name string
		file string
		env  string
	}{
		{name: "missing file", file: filepath.Join(os.TempDir(), "does-not-exist.yaml")},
		{name: "bad yaml", file: "provider: [dummy"},
		{name: "bad file timeout", file: "provider: dummy\ntimeout: soon\n"},
		{name: "bad env timeout", env: "-5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("REPORT_PROVIDER", "dummy")
			path := ""
			switch {
			case tc.name == "missing file":
				path = tc.file
			case tc.file != "":
				path = writeYAML(t, tc.file)
			}
			if tc.env != "" {
				t.Setenv("REPORT_TIMEOUT", tc.env)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestProviderConfig(t *testing.T) {
	cfg := &Config{Provider: "zhipu", APIKey: "k", TextModel: "glm-4", VisionModel: "glm-4v", Timeout: time.Second}
	pc := cfg.ProviderConfig()
	if !pc.JSONMode {
		t.Fatalf("JSON mode must be on")
	}
	if pc.Model != "glm-4" || pc.VisionModel != "glm-4v" || pc.APIKey != "k" || pc.Timeout != time.Second {
		t.Fatalf("unexpected provider config: %+v", pc)
	}
}

func TestParseTimeout(t *testing.T) {
	cases := map[string]time.Duration{
		"45":    45 * time.Second,
		"1m30s": 90 * time.Second,
		" 2s ":  2 * time.Second,
	}
	for in, want := range cases {
		got, err := parseTimeout(in)
		if err != nil || got != want {
			t.Fatalf("parseTimeout(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"0", "-1s", "abc"} {
		if _, err := parseTimeout(in); err == nil {
			t.Fatalf("parseTimeout(%q) should fail", in)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ZHIPU_API_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)
	// godotenv never overrides variables that are already set, even to "".
	os.Unsetenv("ZHIPU_API_KEY")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "from-dotenv" {
		t.Fatalf("APIKey = %q", cfg.APIKey)
	}
}

func TestLoadMalformedDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPORT_PROVIDER", "dummy")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ZHIPU_API_KEY=\"unterminated\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for malformed .env")
	}
}
