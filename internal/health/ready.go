package health

import (
	"net/http"

	"github.com/rampageai/chatbot-api/internal/llm"
)

// ReadyHandler reports ready only when the generation provider answers.
func ReadyHandler(client llm.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := client.Ping(r.Context()); err != nil {
			http.Error(w, "llm unreachable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}
