package models

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicLLM implements Agent using Anthropic's Messages API.
// The API has no JSON response mode, so JSON mode pre-fills the assistant turn with "{".
type AnthropicLLM struct {
	Client    *anthropic.Client
	Config    ProviderConfig
	MaxTokens int
}

func NewAnthropicLLM(cfg ProviderConfig) *AnthropicLLM {
	opts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(cfg.APIKey),
		anthropicopt.WithHTTPClient(httpClient(cfg.Timeout)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(cfg.BaseURL))
	}
	cl := anthropic.NewClient(opts...)
	return &AnthropicLLM{
		Client:    &cl,
		Config:    cfg,
		MaxTokens: anthropicMaxTokens,
	}
}

func (a *AnthropicLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return a.complete(ctx, a.Config.Model, anthropic.NewTextBlock(prompt))
}

// sanitizeForAnthropic filters to the image types the Messages API accepts.
func sanitizeForAnthropic(mt string) string {
	switch mt = normalizeMIME(mt); mt {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return mt
	default:
		return ""
	}
}

func (a *AnthropicLLM) GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error) {
	images := supportedImages("anthropic", files, sanitizeForAnthropic)
	if len(images) == 0 {
		return a.Generate(ctx, prompt)
	}
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)}
	for _, f := range images {
		blocks = append(blocks, anthropic.NewImageBlockBase64(f.MIME, base64.StdEncoding.EncodeToString(f.Data)))
	}
	return a.complete(ctx, modelFor(a.Config, true), blocks...)
}

func (a *AnthropicLLM) complete(ctx context.Context, model string, blocks ...anthropic.ContentBlockParamUnion) (string, error) {
	messages := []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)}
	if a.Config.JSONMode {
		messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock("{")))
	}

	msg, err := a.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(a.MaxTokens),
		Messages:  messages,
	})
	if err != nil {
		return "", newProviderError("anthropic", anthropicStatus(err), err)
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	if b.Len() == 0 {
		return "", newProviderError("anthropic", 0, errEmptyResponse)
	}
	if a.Config.JSONMode {
		return "{" + b.String(), nil
	}
	return b.String(), nil
}

func anthropicStatus(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
