package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGemini_Generate_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiGenerateRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decoding request: %v", err)
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"namaste, "},{"text":"saver"}]}}]}`))
	}))
	defer ts.Close()

	c := NewGeminiClient(ts.URL, "test-key", "gemini-2.0-flash-exp")

	out, err := c.Generate(context.Background(), "hello", Options{Temperature: 0.7, MaxOutputTokens: 1024})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if out != "namaste, saver" {
		t.Fatalf("unexpected output: %q", out)
	}

	if gotPath != "/models/gemini-2.0-flash-exp:generateContent" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected key query param, got %q", gotKey)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 || gotReq.Contents[0].Parts[0].Text != "hello" {
		t.Fatalf("unexpected contents: %+v", gotReq.Contents)
	}
	if gotReq.GenerationConfig.Temperature != 0.7 || gotReq.GenerationConfig.MaxOutputTokens != 1024 {
		t.Fatalf("unexpected generationConfig: %+v", gotReq.GenerationConfig)
	}
}

func TestGemini_Generate_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "API key not valid", http.StatusBadRequest)
	}))
	defer ts.Close()

	c := NewGeminiClient(ts.URL, "bad-key", "gemini-2.0-flash-exp")

	_, err := c.Generate(context.Background(), "hi", Options{})
	if err == nil {
		t.Fatalf("expected error for non-200 status")
	}
	if have := err.Error(); !(strings.Contains(have, "status 400") && strings.Contains(have, "API key not valid")) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGemini_Generate_NoCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	c := NewGeminiClient(ts.URL, "key", "gemini-2.0-flash-exp")

	_, err := c.Generate(context.Background(), "hi", Options{})
	if err == nil || !strings.Contains(err.Error(), "no candidates") {
		t.Fatalf("expected no-candidates error, got %v", err)
	}
}

func TestGemini_Generate_BadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{malformed`))
	}))
	defer ts.Close()

	c := NewGeminiClient(ts.URL, "key", "gemini-2.0-flash-exp")

	if _, err := c.Generate(context.Background(), "hi", Options{}); err == nil {
		t.Fatalf("expected JSON decode error")
	}
}

func TestGemini_Ping_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.0-flash-exp" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name":"models/gemini-2.0-flash-exp"}`))
	}))
	defer ts.Close()

	c := NewGeminiClient(ts.URL, "key", "gemini-2.0-flash-exp")
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() unexpected error: %v", err)
	}
}

func TestGemini_Ping_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewGeminiClient(ts.URL, "key", "gemini-2.0-flash-exp")
	err := c.Ping(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 ping error, got %v", err)
	}
}

func TestGemini_APIKey_Required(t *testing.T) {
	c := NewGeminiClient("http://example", "", "gemini-2.0-flash-exp")
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("expected error when API key is empty for Ping")
	}
	if _, err := c.Generate(context.Background(), "hello", Options{}); err == nil {
		t.Fatalf("expected error when API key is empty for Generate")
	}
}

func TestGemini_Defaults(t *testing.T) {
	c := NewGeminiClient("", "key", "")
	if c.BaseURL != "https://generativelanguage.googleapis.com/v1beta" {
		t.Fatalf("unexpected default base URL: %s", c.BaseURL)
	}
	if c.Model != "gemini-2.0-flash-exp" {
		t.Fatalf("unexpected default model: %s", c.Model)
	}
}
