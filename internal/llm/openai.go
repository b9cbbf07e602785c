package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rampageai/chatbot-api/internal/metrics"
)

// OpenAIClient is the alternative provider, for deployments that point the
// relay at an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

// Compile-time interface conformance
var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTP: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Ping lists models to verify the key and endpoint.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	if c.APIKey == "" {
		return fmt.Errorf("openai api key is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/models"
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.LLMPings.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return fmt.Errorf("openai ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		metrics.LLMPings.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return fmt.Errorf("openai ping bad status: %d, body: %s", resp.StatusCode, string(b))
	}

	metrics.LLMPings.Inc(map[string]string{"provider": "openai", "outcome": "ok"})
	return nil
}

// Generate calls the chat completions endpoint in non-stream mode.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("openai api key is empty")
	}

	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": opts.Temperature,
		"max_tokens":  opts.MaxOutputTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.LLMGenerates.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		metrics.LLMGenerates.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return "", fmt.Errorf("openai generate failed: status %d, body: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.LLMGenerates.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return "", err
	}

	if len(result.Choices) == 0 {
		metrics.LLMGenerates.Inc(map[string]string{"provider": "openai", "outcome": "error"})
		return "", fmt.Errorf("openai: empty response")
	}

	metrics.LLMGenerates.Inc(map[string]string{"provider": "openai", "outcome": "ok"})
	metrics.LLMGenDur.Observe(map[string]string{"provider": "openai", "outcome": "ok"}, time.Since(start).Seconds())
	return result.Choices[0].Message.Content, nil
}
