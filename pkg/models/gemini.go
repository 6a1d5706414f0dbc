package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ---------------------------- Google Gemini ----------------------------------

type GeminiLLM struct {
	Client *genai.Client
	Config ProviderConfig
}

// geminiTransport carries Gemini requests once the API key header is set.
var geminiTransport http.RoundTripper = http.DefaultTransport

func NewGeminiLLM(ctx context.Context, cfg ProviderConfig) (*GeminiLLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: missing API key")
	}
	// A custom HTTP client replaces the SDK's own auth transport, so the key travels
	// in a header set by apiKeyTransport.
	hc := httpClient(cfg.Timeout)
	hc.Transport = &apiKeyTransport{key: cfg.APIKey, base: geminiTransport}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey), option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiLLM{Client: client, Config: cfg}, nil
}

func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, g.Config.Model, genai.Text(prompt))
}

func (g *GeminiLLM) GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error) {
	images := supportedImages("gemini", files, sanitizeForGemini)
	if len(images) == 0 {
		return g.Generate(ctx, prompt)
	}
	parts := []genai.Part{genai.Text(prompt)}
	for _, f := range images {
		parts = append(parts, genai.ImageData(f.MIME, f.Data))
	}
	return g.generate(ctx, modelFor(g.Config, true), parts...)
}

func (g *GeminiLLM) generate(ctx context.Context, name string, parts ...genai.Part) (string, error) {
	model := g.Client.GenerativeModel(name)
	if g.Config.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", newProviderError("gemini", geminiStatus(err), err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", newProviderError("gemini", 0, errEmptyResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// sanitizeForGemini returns the image format genai.ImageData expects, or "" to skip.
func sanitizeForGemini(mt string) string {
	switch normalizeMIME(mt) {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpeg"
	case "image/webp":
		return "webp"
	case "image/heic":
		return "heic"
	default:
		return ""
	}
}

func geminiStatus(err error) int {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}

// apiKeyTransport adds the Gemini API key header to every request.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("x-goog-api-key", t.key)
	return t.base.RoundTrip(req)
}
