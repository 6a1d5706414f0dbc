package models

import (
	"context"
	"strings"
	"sync"
)

// DummyLLM is a lightweight model implementation useful for local testing without API calls.
// It replies with a fixed response (or error) and records what it was asked.
type DummyLLM struct {
	Response string
	Err      error

	mu        sync.Mutex
	prompts   []string
	lastFiles []File
}

func NewDummyLLM(response string) *DummyLLM {
	if strings.TrimSpace(response) == "" {
		response = "{}"
	}
	return &DummyLLM{Response: response}
}

func (d *DummyLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return d.GenerateWithFiles(ctx, prompt, nil)
}

func (d *DummyLLM) GenerateWithFiles(ctx context.Context, prompt string, files []File) (string, error) {
	d.mu.Lock()
	d.prompts = append(d.prompts, prompt)
	d.lastFiles = files
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", newProviderError("dummy", 0, err)
	}
	if d.Err != nil {
		return "", d.Err
	}
	return d.Response, nil
}

// Prompts returns every prompt received so far.
func (d *DummyLLM) Prompts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.prompts...)
}

// LastFiles returns the attachments of the most recent call.
func (d *DummyLLM) LastFiles() []File {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastFiles
}

var _ Agent = (*DummyLLM)(nil)
