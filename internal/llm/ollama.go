package llm

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/ppiankov/querysmith/internal/logging"
)

const ollamaBaseURL = "http://localhost:11434/v1"

// OllamaProvider implements the Provider interface for local models served
// by Ollama's OpenAI-compatible endpoint
type OllamaProvider struct {
	client llms.Model
	config Config
	logger *zap.SugaredLogger
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	if config.Model == "" {
		return nil, errors.WithHint(errors.New("ollama model must be specified"),
			"e.g. llama3.1:8b or mistral")
	}

	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = ollamaBaseURL
	}

	// local servers accept any token
	client, err := lcopenai.New(
		lcopenai.WithBaseURL(baseURL),
		lcopenai.WithToken("none"),
		lcopenai.WithModel(config.Model),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create ollama client")
	}

	return newOllamaProvider(client, config), nil
}

func newOllamaProvider(client llms.Model, config Config) *OllamaProvider {
	return &OllamaProvider{
		client: client,
		config: config,
		logger: logging.Component(config.Logger, "ollama"),
	}
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks if the model answers a trivial prompt
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.Complete(ctx, CompletionRequest{Prompt: "Hi", MaxTokens: 1})
	if err != nil {
		p.logger.Warnw("Ollama availability check failed", logging.FieldError, err)
		return false
	}
	return true
}

// Complete generates a completion through langchaingo
func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	var content []llms.MessageContent
	if req.System != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))

	opts := []llms.CallOption{
		llms.WithMaxTokens(p.config.maxTokens(req.MaxTokens)),
		llms.WithTemperature(req.Temperature),
	}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}

	resp, err := p.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "ollama completion")
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return nil, errors.New("no content in Ollama response")
	}

	return &CompletionResponse{
		Text:  resp.Choices[0].Content,
		Model: p.config.model(req.Model, ""),
	}, nil
}
