package chat

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/rampageai/chatbot-api/internal/llm"
	"github.com/rampageai/chatbot-api/internal/logx"
)

// Generation tunables are fixed deployment constants, not request-configurable.
const (
	temperature     = 0.7
	maxOutputTokens = 1024
)

// Max request size for POST /chat to protect the server (1MB)
const maxChatBodyBytes int64 = 1 << 20

// Request is the inbound chat payload. Message stays raw so presence can
// be distinguished from absence and non-string messages still relay.
type Request struct {
	Message json.RawMessage            `json:"message"`
	Context map[string]json.RawMessage `json:"context"`
}

// Response is the outbound envelope: success plus either the generated
// text or a failure description.
type Response struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Handler struct {
	llm llm.Client
}

func NewHandler(client llm.Client) *Handler {
	return &Handler{llm: client}
}

// RegisterHTTP registers the chat endpoint.
func (h *Handler) RegisterHTTP(mux *http.ServeMux) {
	mux.HandleFunc("/chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Message is required"})
		return
	}

	id := uuid.NewString()
	message := rawText(req.Message)

	logx.L(id, "Chat", "received message: %q", message)
	if len(req.Context) > 0 {
		logx.L(id, "Chat", "context keys: %v", keyNames(req.Context))
	}

	prompt := BuildPrompt(message, req.Context)

	timer := logx.Start(id, "Chat", "generate")
	text, err := h.llm.Generate(r.Context(), prompt, llm.Options{
		Temperature:     temperature,
		MaxOutputTokens: maxOutputTokens,
	})
	timer.End()

	if err != nil {
		logx.Error("Chat", "[%s] generate failed: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	logx.L(id, "Chat", "generate ok (%d chars)", len(text))
	writeJSON(w, http.StatusOK, Response{Success: true, Response: text})
}

func keyNames(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
