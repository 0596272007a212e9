package assistant

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventhub/internal/config"
	"github.com/nfrund/eventhub/internal/middleware"
	"github.com/nfrund/eventhub/internal/module"
	"github.com/nfrund/eventhub/internal/registry"
)

// requestsPerMinute bounds assistant calls per client IP.
const requestsPerMinute = 20

// AssistantModule implements the module.Module interface for the AI helper.
type AssistantModule struct {
	module.BaseModule
	providers []Provider
}

// Dependencies holds all the services that the AssistantModule requires.
type Dependencies struct {
	// Providers overrides the chain built from configuration.
	Providers []Provider
}

// New creates a new instance of the AssistantModule.
func New(deps Dependencies) *AssistantModule {
	return &AssistantModule{providers: deps.Providers}
}

// Name returns the module name.
func (m *AssistantModule) Name() string {
	return "assistant"
}

// Prefix mounts the module on the public API.
func (m *AssistantModule) Prefix() string {
	return "/api/assistant"
}

// Boot builds the provider chain and sets up the routes.
func (m *AssistantModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	slog.Info("Booting AssistantModule: Setting up routes...")
	providers := m.providers
	if providers == nil {
		providers = ProvidersFromConfig(ctx, reg.Config().GetAssistant())
	}
	handler := NewHandler(NewService(providers...))

	g.Use(middleware.RateLimiter(requestsPerMinute))
	g.POST("/chat", handler.Chat)
	return nil
}

// ProvidersFromConfig returns DeepSeek, then OpenAI, then Gemini when a
// Gemini key is configured.
func ProvidersFromConfig(ctx context.Context, cfg config.AssistantConfig) []Provider {
	providers := []Provider{
		NewOpenAIClient("deepseek", cfg.DeepSeek),
		NewOpenAIClient("openai", cfg.OpenAI),
	}
	if cfg.Gemini.APIKey == "" {
		return providers
	}
	gemini, err := NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		slog.Warn("Gemini fallback disabled", "error", err)
		return providers
	}
	return append(providers, gemini)
}
