package models

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAILLM talks to any OpenAI-compatible chat-completion endpoint (OpenAI, Zhipu GLM).
type OpenAILLM struct {
	Client *openai.Client
	Config ProviderConfig
}

func NewOpenAILLM(cfg ProviderConfig) *OpenAILLM {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = httpClient(cfg.Timeout)
	return &OpenAILLM{Client: openai.NewClientWithConfig(clientCfg), Config: cfg}
}

func (o *OpenAILLM) Generate(ctx context.Context, prompt string) (string, error) {
	return o.complete(ctx, o.Config.Model, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
}

func (o *OpenAILLM) GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error) {
	images := imageFiles(files)
	if len(images) == 0 {
		return o.Generate(ctx, prompt)
	}

	contentParts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: prompt,
	}}
	// OpenAI-compatible endpoints get every image/* type; GLM-4V takes bmp and heic too.
	for _, f := range images {
		dataURL := fmt.Sprintf("data:%s;base64,%s", f.MIME, base64.StdEncoding.EncodeToString(f.Data))
		contentParts = append(contentParts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL,
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	return o.complete(ctx, modelFor(o.Config, true), openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: contentParts,
	})
}

func (o *OpenAILLM) complete(ctx context.Context, model string, msg openai.ChatCompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: []openai.ChatCompletionMessage{msg},
	}
	if o.Config.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", newProviderError("openai", openAIStatus(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", newProviderError("openai", 0, errEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
