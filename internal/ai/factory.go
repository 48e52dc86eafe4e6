package ai

import (
	"PromptCraft/internal/config"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// New создаёт клиента бэкенда по конфигурации. Наличие ключа проверяет config.Validate.
func New(cfg *config.Config, logger *zap.SugaredLogger) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLM.Provider)) {
	case "openai", "":
		return NewOpenAIClient(OpenAIOptions{
			APIKey:    cfg.APIKey(),
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
			Timeout:   cfg.LLM.Timeout,
		}, logger), nil
	case "anthropic":
		model := cfg.LLM.Model
		if strings.HasPrefix(model, "gpt") {
			// дефолт конфига рассчитан на OpenAI
			model = ""
		}
		return NewAnthropicClient(cfg.APIKey(), model, cfg.LLM.MaxTokens, cfg.LLM.Timeout, logger)
	case "stub":
		return NewStubClient(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}
