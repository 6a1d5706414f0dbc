package models

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
)

// ZhipuBaseURL is the OpenAI-compatible endpoint of the Zhipu GLM platform.
const ZhipuBaseURL = "https://open.bigmodel.cn/api/paas/v4"

const defaultTimeout = 60 * time.Second

var mimeAliasMap = map[string]string{
	"image/jpg":   "image/jpeg",
	"image/pjpeg": "image/jpeg",
	"image/x-png": "image/png",
}

// ProviderConfig selects and parameterises a chat-completion backend.
type ProviderConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	Timeout     time.Duration
	JSONMode    bool
}

// NewLLMProvider returns a concrete Agent.
func NewLLMProvider(ctx context.Context, cfg ProviderConfig) (Agent, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "zhipu", "glm":
		if cfg.BaseURL == "" {
			cfg.BaseURL = ZhipuBaseURL
		}
		return NewOpenAILLM(cfg), nil
	case "openai":
		return NewOpenAILLM(cfg), nil
	case "gemini", "google":
		return NewGeminiLLM(ctx, cfg)
	case "ollama":
		return NewOllamaLLM(cfg)
	case "anthropic", "claude":
		return NewAnthropicLLM(cfg), nil
	case "dummy":
		return NewDummyLLM(""), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// modelFor picks the vision model when media is attached and one is configured.
func modelFor(cfg ProviderConfig, withMedia bool) string {
	if withMedia && strings.TrimSpace(cfg.VisionModel) != "" {
		return cfg.VisionModel
	}
	return cfg.Model
}

// normalizeMIME strips parameters and resolves aliases.
func normalizeMIME(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	if normalized, ok := mimeAliasMap[m]; ok {
		return normalized
	}
	return m
}

// imageFiles keeps the attachments a vision model can take.
func imageFiles(files []File) []File {
	var out []File
	for _, f := range files {
		mt := normalizeMIME(f.MIME)
		if !strings.HasPrefix(mt, "image/") || len(f.Data) == 0 {
			continue
		}
		f.MIME = mt
		out = append(out, f)
	}
	return out
}

// supportedImages keeps the images a provider accepts, with MIME replaced by the value
// accept returns for it. Dropped images are logged.
func supportedImages(provider string, files []File, accept func(string) string) []File {
	var out []File
	for _, f := range imageFiles(files) {
		mt := accept(f.MIME)
		if mt == "" {
			log.WithFields(log.Fields{"provider": provider, "mime": f.MIME, "name": f.Name}).
				Warn("image type not supported by provider, dropping it")
			continue
		}
		f.MIME = mt
		out = append(out, f)
	}
	return out
}
