package llm

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// NewProvider creates a provider for config. An empty provider name means
// the slot is disabled and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch strings.ToLower(config.Provider) {
	case "anthropic", "claude":
		p, err = asProvider(NewAnthropicProvider(config))

	case "openai":
		p, err = asProvider(NewOpenAIProvider(config))

	case "ollama":
		p, err = asProvider(NewOllamaProvider(config))

	case "":
		return nil, nil

	default:
		return nil, errors.Newf("unknown LLM provider: %s (supported: anthropic, openai, ollama)", config.Provider)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s provider", config.Provider)
	}
	return p, nil
}

// asProvider keeps a failed constructor's typed nil out of the interface
func asProvider[P Provider](p P, err error) (Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
