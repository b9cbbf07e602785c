package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rampageai/chatbot-api/internal/chat"
)

// fakeGemini stands in for the upstream generateContent endpoint and
// records the prompt it received.
func fakeGemini(t *testing.T, reply string) (*httptest.Server, *string) {
	t.Helper()
	var lastPrompt string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			lastPrompt = req.Contents[0].Parts[0].Text
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": reply}}}},
			},
		})
	}))
	return ts, &lastPrompt
}

func TestE2E_ChatRoundTrip(t *testing.T) {
	upstream, lastPrompt := fakeGemini(t, "A SIP is a systematic investment plan.")
	defer upstream.Close()

	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("GEMINI_BASE_URL", upstream.URL)

	a, err := New()
	require.NoError(t, err)

	ts := httptest.NewServer(a.http.srv.Handler)
	defer ts.Close()

	body := `{"message":"What is a SIP?","context":{"balance":52000}}`
	resp, err := http.Post(ts.URL+"/chat", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out chat.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.Success)
	require.Equal(t, "A SIP is a systematic investment plan.", out.Response)

	require.True(t, strings.HasPrefix(*lastPrompt, chat.SystemPreamble))
	require.Contains(t, *lastPrompt, "Current balance: ₹52000")
	require.True(t, strings.HasSuffix(*lastPrompt, "User: What is a SIP?"))
}

func TestE2E_UpstreamFailureKeepsServing(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("GEMINI_BASE_URL", upstream.URL)

	a, err := New()
	require.NoError(t, err)

	ts := httptest.NewServer(a.http.srv.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/chat", "application/json", bytes.NewBufferString(`{"message":"hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var out chat.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.False(t, out.Success)
	require.NotEmpty(t, out.Error)

	// health stays green regardless of the provider
	hResp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer hResp.Body.Close()
	require.Equal(t, http.StatusOK, hResp.StatusCode)
}
