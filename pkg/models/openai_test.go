package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type capturedChatRequest struct {
	Model          string `json:"model"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func newChatServer(t *testing.T, status int, body string, captured *capturedChatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func chatBody(content string) string {
	quoted, _ := json.Marshal(content)
	return `{"id":"1","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + string(quoted) + `}}]}`
}

func TestOpenAILLMGenerateRequestsJSONMode(t *testing.T) {
	var captured capturedChatRequest
	srv := newChatServer(t, http.StatusOK, chatBody(`{"user_name":"Ana"}`), &captured)

	llm := NewOpenAILLM(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "glm-4", VisionModel: "glm-4v", JSONMode: true})
	got, err := llm.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != `{"user_name":"Ana"}` {
		t.Fatalf("unexpected content %q", got)
	}
	if captured.Model != "glm-4" {
		t.Fatalf("expected text model, got %q", captured.Model)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %+v", captured.ResponseFormat)
	}
	var text string
	if err := json.Unmarshal(captured.Messages[0].Content, &text); err != nil || text != "hello" {
		t.Fatalf("expected plain text content, got %s", captured.Messages[0].Content)
	}
}

func TestOpenAILLMGenerateWithImageUsesVisionModel(t *testing.T) {
	var captured capturedChatRequest
	srv := newChatServer(t, http.StatusOK, chatBody(`{}`), &captured)

	llm := NewOpenAILLM(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "glm-4", VisionModel: "glm-4v", JSONMode: true})
	files := []File{{Name: "a.png", MIME: "image/png", Data: []byte("PNGDATA")}}
	if _, err := llm.GenerateWithFiles(context.Background(), "describe", files); err != nil {
		t.Fatalf("GenerateWithFiles returned error: %v", err)
	}
	if captured.Model != "glm-4v" {
		t.Fatalf("expected vision model, got %q", captured.Model)
	}

	var parts []struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		ImageURL *struct {
			URL string `json:"url"`
		} `json:"image_url"`
	}
	if err := json.Unmarshal(captured.Messages[0].Content, &parts); err != nil {
		t.Fatalf("expected multi-part content: %v", err)
	}
	if len(parts) != 2 || parts[0].Type != "text" || parts[1].Type != "image_url" {
		t.Fatalf("unexpected parts: %+v", parts)
	}
	if parts[1].ImageURL == nil || parts[1].ImageURL.URL != "data:image/png;base64,UE5HREFUQQ==" {
		t.Fatalf("unexpected image part: %+v", parts[1].ImageURL)
	}
}

func TestOpenAILLMGenerateWithoutImagesFallsBackToText(t *testing.T) {
	var captured capturedChatRequest
	srv := newChatServer(t, http.StatusOK, chatBody(`{}`), &captured)

	llm := NewOpenAILLM(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "glm-4", VisionModel: "glm-4v"})
	files := []File{{Name: "a.mp3", MIME: "audio/mpeg", Data: []byte("x")}}
	if _, err := llm.GenerateWithFiles(context.Background(), "hi", files); err != nil {
		t.Fatalf("GenerateWithFiles returned error: %v", err)
	}
	if captured.Model != "glm-4" {
		t.Fatalf("expected text model, got %q", captured.Model)
	}
	if captured.ResponseFormat != nil {
		t.Fatalf("did not expect response format without JSON mode")
	}
}

func TestOpenAILLMAuthFailure(t *testing.T) {
	srv := newChatServer(t, http.StatusUnauthorized, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`, nil)

	llm := NewOpenAILLM(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "glm-4"})
	_, err := llm.Generate(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
	if KindOf(err) != KindAuth {
		t.Fatalf("expected auth kind, got %v (%v)", KindOf(err), err)
	}
}

func TestOpenAILLMEmptyChoices(t *testing.T) {
	srv := newChatServer(t, http.StatusOK, `{"id":"1","object":"chat.completion","choices":[]}`, nil)

	llm := NewOpenAILLM(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "glm-4"})
	_, err := llm.Generate(context.Background(), "hello")
	if KindOf(err) != KindEmptyResponse {
		t.Fatalf("expected empty response kind, got %v (%v)", KindOf(err), err)
	}
}

func TestOpenAILLMTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	llm := NewOpenAILLM(ProviderConfig{APIKey: "test-key", BaseURL: url, Model: "glm-4"})
	_, err := llm.Generate(context.Background(), "hello")
	if KindOf(err) != KindTransport {
		t.Fatalf("expected transport kind, got %v (%v)", KindOf(err), err)
	}
}

func TestOpenAILLMForwardsEveryImageType(t *testing.T) {
	for _, mime := range []string{"image/bmp", "image/heic", "image/svg+xml"} {
		t.Run(mime, func(t *testing.T) {
			var captured capturedChatRequest
			srv := newChatServer(t, http.StatusOK, chatBody(`{}`), &captured)

			llm := NewOpenAILLM(ProviderConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "glm-4", VisionModel: "glm-4v", JSONMode: true})
			files := []File{{Name: "photo", MIME: mime, Data: []byte("IMG")}}
			if _, err := llm.GenerateWithFiles(context.Background(), "describe", files); err != nil {
				t.Fatalf("GenerateWithFiles returned error: %v", err)
			}

			var parts []struct {
				Type     string `json:"type"`
				ImageURL *struct {
					URL string `json:"url"`
				} `json:"image_url"`
			}
			if err := json.Unmarshal(captured.Messages[0].Content, &parts); err != nil {
				t.Fatalf("expected multi-part content: %v", err)
			}
			want := "data:" + mime + ";base64,SU1H"
			if len(parts) != 2 || parts[1].ImageURL == nil || parts[1].ImageURL.URL != want {
				t.Fatalf("expected image part %q, got %+v", want, parts)
			}
		})
	}
}
