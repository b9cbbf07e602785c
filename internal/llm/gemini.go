package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rampageai/chatbot-api/internal/metrics"
)

// GeminiClient talks to the Google Generative Language REST API
// (models/<model>:generateContent). The key travels as a query parameter,
// which is how that API authenticates.
type GeminiClient struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

// Compile-time interface conformance
var _ Client = (*GeminiClient)(nil)

func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}

	return &GeminiClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTP: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiGenerateRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) endpoint(verb string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	return fmt.Sprintf("%s/models/%s%s?key=%s", base, c.Model, verb, url.QueryEscape(c.APIKey))
}

// Ping fetches the model metadata to verify the key and endpoint.
func (c *GeminiClient) Ping(ctx context.Context) error {
	if c.APIKey == "" {
		return fmt.Errorf("gemini api key is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(""), nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.LLMPings.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return fmt.Errorf("gemini ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		metrics.LLMPings.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return fmt.Errorf("gemini ping bad status: %d, body: %s", resp.StatusCode, string(b))
	}

	metrics.LLMPings.Inc(map[string]string{"provider": "gemini", "outcome": "ok"})
	return nil
}

// Generate calls generateContent in non-stream mode and returns the
// concatenated text of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("gemini api key is empty")
	}

	payload := geminiGenerateRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(":generateContent"), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.LLMGenerates.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		metrics.LLMGenerates.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return "", fmt.Errorf("gemini generate failed: status %d, body: %s", resp.StatusCode, string(b))
	}

	var result geminiGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.LLMGenerates.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return "", err
	}

	if len(result.Candidates) == 0 {
		metrics.LLMGenerates.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return "", fmt.Errorf("gemini: no candidates in response")
	}

	var out strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}

	metrics.LLMGenerates.Inc(map[string]string{"provider": "gemini", "outcome": "ok"})
	metrics.LLMGenDur.Observe(map[string]string{"provider": "gemini", "outcome": "ok"}, time.Since(start).Seconds())
	return out.String(), nil
}
