package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicClient использует Anthropic Messages API напрямую.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int
	logger    *zap.SugaredLogger
}

func NewAnthropicClient(apiKey, model string, maxTokens int, timeout time.Duration, logger *zap.SugaredLogger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: empty API key")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}, nil
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	dur := time.Since(start)
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	c.logger.Infow("Anthropic response received", "model", c.model, "duration", dur.String())

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	out := b.String()
	if strings.TrimSpace(out) == "" {
		return "", errors.New("anthropic: empty response")
	}
	return out, nil
}
