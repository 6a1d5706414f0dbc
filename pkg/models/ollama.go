package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

// ---------------------------- Ollama -----------------------------------------

const defaultOllamaHost = "http://localhost:11434"

type OllamaLLM struct {
	Client *ollama.Client
	Config ProviderConfig
}

func NewOllamaLLM(cfg ProviderConfig) (*OllamaLLM, error) {
	host := cfg.BaseURL
	if host == "" {
		host = defaultOllamaHost
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	c := ollama.NewClient(u, httpClient(cfg.Timeout))
	return &OllamaLLM{Client: c, Config: cfg}, nil
}

func (o *OllamaLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, &ollama.GenerateRequest{
		Model:  o.Config.Model,
		Prompt: prompt,
	})
}

func (o *OllamaLLM) GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error) {
	images := imageFiles(files)
	if len(images) == 0 {
		return o.Generate(ctx, prompt)
	}

	imageData := make([]ollama.ImageData, 0, len(images))
	for _, f := range images {
		imageData = append(imageData, ollama.ImageData(f.Data))
	}

	return o.generate(ctx, &ollama.GenerateRequest{
		Model:  modelFor(o.Config, true),
		Prompt: prompt,
		Images: imageData,
	})
}

func (o *OllamaLLM) generate(ctx context.Context, req *ollama.GenerateRequest) (string, error) {
	stream := false
	req.Stream = &stream
	if o.Config.JSONMode {
		req.Format = json.RawMessage(`"json"`)
	}

	var text strings.Builder
	if err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		return nil
	}); err != nil {
		return "", newProviderError("ollama", ollamaStatus(err), err)
	}
	if text.Len() == 0 {
		return "", newProviderError("ollama", 0, errEmptyResponse)
	}
	return text.String(), nil
}

func ollamaStatus(err error) int {
	var se ollama.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
