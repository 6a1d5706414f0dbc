package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type capturedAnthropicRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type   string `json:"type"`
			Text   string `json:"text"`
			Source *struct {
				MediaType string `json:"media_type"`
				Data      string `json:"data"`
			} `json:"source"`
		} `json:"content"`
	} `json:"messages"`
}

const anthropicReply = `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"\"user_name\":\"Ana\"}"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`

func newMessagesServer(t *testing.T, captured *capturedAnthropicRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "secret-key" {
			t.Errorf("unexpected X-Api-Key %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(anthropicReply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicLLMPrefillsJSON(t *testing.T) {
	var captured capturedAnthropicRequest
	srv := newMessagesServer(t, &captured)

	llm := NewAnthropicLLM(ProviderConfig{APIKey: "secret-key", BaseURL: srv.URL, Model: "claude-text", VisionModel: "claude-vision", JSONMode: true})
	got, err := llm.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != `{"user_name":"Ana"}` {
		t.Fatalf("unexpected content %q", got)
	}
	if captured.Model != "claude-text" {
		t.Fatalf("expected text model, got %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[1].Role != "assistant" || captured.Messages[1].Content[0].Text != "{" {
		t.Fatalf("expected assistant prefill, got %+v", captured.Messages)
	}
}

func TestAnthropicLLMImageBlocks(t *testing.T) {
	cases := []struct {
		name      string
		mime      string
		wantModel string
		wantParts int
	}{
		{"png attached", "image/png", "claude-vision", 2},
		{"bmp dropped", "image/bmp", "claude-text", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var captured capturedAnthropicRequest
			srv := newMessagesServer(t, &captured)

			llm := NewAnthropicLLM(ProviderConfig{APIKey: "secret-key", BaseURL: srv.URL, Model: "claude-text", VisionModel: "claude-vision", JSONMode: true})
			files := []File{{Name: "img", MIME: tc.mime, Data: []byte("IMG")}}
			if _, err := llm.GenerateWithFiles(context.Background(), "describe", files); err != nil {
				t.Fatalf("GenerateWithFiles returned error: %v", err)
			}
			if captured.Model != tc.wantModel {
				t.Fatalf("model = %q, want %q", captured.Model, tc.wantModel)
			}
			user := captured.Messages[0].Content
			if len(user) != tc.wantParts {
				t.Fatalf("expected %d user blocks, got %+v", tc.wantParts, user)
			}
			if tc.wantParts == 2 && (user[1].Source == nil || user[1].Source.MediaType != tc.mime) {
				t.Fatalf("unexpected image block %+v", user[1])
			}
		})
	}
}
