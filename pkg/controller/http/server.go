package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sadhugit/rancher-release-bot/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookSecret string
	slackCommands http.Handler
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the GitHub webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithSlackCommandHandler mounts a handler for Slack slash commands
func WithSlackCommandHandler(h http.Handler) Option {
	return func(c *config) {
		c.slackCommands = h
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	pipelineUC interfaces.PipelineUseCase,
	store interfaces.ReleaseStore,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth(store))

	// Release queries
	releases := &ReleaseHandler{store: store, pipelineUC: pipelineUC}
	router.Get("/releases", releases.List)
	router.Get("/releases/{version}", releases.Get)
	router.Get("/stats", releases.Stats)
	router.Post("/analyze/{version}", releases.Reanalyze)

	// Webhook endpoint
	webhookHandler := NewWebhookHandler(cfg.webhookSecret, pipelineUC)
	router.Post("/webhook/github", webhookHandler.Handle)

	// Slack slash commands
	if cfg.slackCommands != nil {
		router.Post("/hooks/slack/commands", cfg.slackCommands.ServeHTTP)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
