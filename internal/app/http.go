package app

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rampageai/chatbot-api/internal/chat"
	"github.com/rampageai/chatbot-api/internal/config"
	"github.com/rampageai/chatbot-api/internal/health"
	"github.com/rampageai/chatbot-api/internal/llm"
	"github.com/rampageai/chatbot-api/internal/logx"
	"github.com/rampageai/chatbot-api/internal/metrics"
)

type HTTPServer struct {
	srv  *http.Server
	port string
}

// httpPort, when set, overrides the configured port before the app starts.
var httpPort = ""

// SetHTTPPort allows overriding the configured HTTP port (e.g. via CLI flag).
func SetHTTPPort(p string) {
	httpPort = p
}

func NewHTTPServer(cfg *config.Config, chatHandler *chat.Handler, client llm.Client) *HTTPServer {
	mux := http.NewServeMux()

	chatHandler.RegisterHTTP(mux)
	mux.HandleFunc("/health", health.Handler)
	mux.HandleFunc("/health/ready", health.ReadyHandler(client))
	mux.HandleFunc("/metrics", metrics.ServeHTTP)

	// Middleware order: hardening first, then CORS (answers preflights),
	// then per-request metrics around the actual handlers.
	handler := secureMiddleware(corsMiddleware(instrumentMiddleware(mux)))

	port := strconv.Itoa(cfg.Port)
	if httpPort != "" {
		port = httpPort
	}

	return &HTTPServer{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20, // 1MB
		},
		port: port,
	}
}

func (h *HTTPServer) Port() string {
	return h.port
}

func (h *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logx.Info("HTTP", "listening on port :%s", h.port)
		errCh <- h.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logx.Info("HTTP", "shutting down server...")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return h.srv.Shutdown(shutCtx)
	}
}

// corsMiddleware permits cross-origin calls from any origin so browser
// front ends can talk to the API directly. Preflights are answered here.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// secureMiddleware adds basic hardening:
// - Common security headers
// - Body size limit
// - Block TRACE method
func secureMiddleware(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodTrace {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func instrumentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		lbls := map[string]string{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(rec.status),
		}
		metrics.HTTPRequests.Inc(lbls)
		metrics.HTTPDuration.Observe(lbls, time.Since(start).Seconds())
	})
}
