package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/querysmith/internal/model"
)

// Provider defines the interface for generation providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the raw completion text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for a single completion
type CompletionRequest struct {
	// Prompt is sent as the only user message
	Prompt string

	// System is an optional system instruction
	System string

	// Model overrides the provider's configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature is passed through as-is; 0 keeps output deterministic
	Temperature float64
}

// CompletionResponse contains the provider output
type CompletionResponse struct {
	// Text is the first text block of the completion
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "anthropic", "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	UserAgent string

	Logger *zap.SugaredLogger
}

// DefaultMaxTokens is used when neither the request nor the config sets a limit
const DefaultMaxTokens = 1024

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   60 * time.Second,
		MaxTokens: DefaultMaxTokens,
	}
}

// ConfigFromModel builds a provider config for one generation slot
func ConfigFromModel(p model.ProviderConfig, gen model.GenerationConfig, h model.HTTPConfig) Config {
	return Config{
		Provider:   p.Provider,
		Model:      p.Model,
		APIKey:     p.APIKey,
		BaseURL:    p.BaseURL,
		Timeout:    p.Timeout,
		MaxTokens:  gen.MaxTokens,
		HTTPProxy:  h.HTTPProxy,
		HTTPSProxy: h.HTTPSProxy,
		NoProxy:    h.NoProxy,
		UserAgent:  h.UserAgent,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultConfig().Timeout
	}
	return c.Timeout
}

func (c Config) maxTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return DefaultMaxTokens
}

func (c Config) model(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}
