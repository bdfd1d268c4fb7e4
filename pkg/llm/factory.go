package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/skankhunt44/schema-snap/pkg/config"
)

// NewClientFromConfig creates the configured provider's client.
func NewClientFromConfig(cfg *config.OracleConfig, logger *zap.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewClient(&ClientConfig{
			Endpoint: cfg.BaseURL,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
		}, logger)
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.Model, logger)
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}
