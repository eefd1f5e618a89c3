package app

import (
	"context"
	"fmt"
	"log"

	"repoprep/internal/gateway/config"
	"repoprep/internal/gateway/handler"
	"repoprep/internal/gateway/server"
	"repoprep/internal/llm"
	llmclient "repoprep/internal/llm/client"
	"repoprep/internal/ratelimit"
)

type App struct {
	server *server.Server
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig wires the gateway from an already loaded Config.
func NewWithConfig(cfg *config.Config) *App {
	// Dependencies
	provider := llmclient.NewOpenAIClient(llmclient.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	})
	if !provider.Configured() {
		// checked again per request so a restart with the key fixes it
		log.Printf("warning: OPENAI_API_KEY is not set; chat endpoints will return 500")
	}
	completer := llm.Wrap(provider, llm.WithLogging(nil), llm.Retry(cfg.LLM.MaxAttempts, 0))
	limiter := ratelimit.NewFixedWindow(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// Routing & Server
	mux := server.NewMux(handler.New(completer), limiter)
	srv := server.New(cfg.Port, mux)

	log.Printf("gateway env=%s model=%s rate_limit=%d/%s", cfg.Env, cfg.LLM.Model, limiter.Limit(), cfg.RateLimit.Window)
	return &App{server: srv}
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
