package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rampageai/chatbot-api/internal/chat"
	"github.com/rampageai/chatbot-api/internal/config"
	"github.com/rampageai/chatbot-api/internal/health"
	"github.com/rampageai/chatbot-api/internal/llm"
	"github.com/rampageai/chatbot-api/internal/logx"
)

// configFile is the optional deployment override file; missing is fine.
const configFile = "config.yaml"

type App struct {
	cfg  *config.Config
	llm  llm.Client
	http *HTTPServer
}

// New wires the whole service: config, provider client, handlers, server.
// It fails when the selected provider has no API key, so the process
// never serves traffic without a credential.
func New() (*App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	logx.SetLevel(cfg.LogLevel)

	client := newLLMClient(cfg)
	chatHandler := chat.NewHandler(client)
	httpServer := NewHTTPServer(cfg, chatHandler, client)

	return &App{
		cfg:  cfg,
		llm:  client,
		http: httpServer,
	}, nil
}

func newLLMClient(cfg *config.Config) llm.Client {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GoogleAPIKey, cfg.GeminiModel)
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.http.Start(gctx)
	})

	logx.Info("App", "%s starting on port %s", health.ServiceName, a.http.Port())
	logx.Info("App", "using API key %s...", truncateKey(a.cfg.APIKey()))

	return g.Wait()
}

// truncateKey keeps logs useful without leaking the full credential.
func truncateKey(key string) string {
	if len(key) <= 20 {
		return key
	}
	return key[:20]
}
