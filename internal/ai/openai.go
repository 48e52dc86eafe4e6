package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"go.uber.org/zap"
)

// OpenAIClient отправляет текст в OpenAI через Responses API.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.SugaredLogger
}

// OpenAIOptions параметры подключения. BaseURL позволяет ходить в любой OpenAI-совместимый сервер.
type OpenAIOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

func NewOpenAIClient(o OpenAIOptions, logger *zap.SugaredLogger) *OpenAIClient {
	// Повторов нет: упавший запрос пользователь перезапускает сам
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if o.APIKey != "" {
		opts = append(opts, option.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(o.Timeout))
	}
	client := openai.NewClient(opts...)

	model := o.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	return &OpenAIClient{client: &client, model: model, maxTokens: o.MaxTokens, logger: logger}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("nil openai client")
	}
	params := responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						{
							OfInputText: &responses.ResponseInputTextParam{
								Text: prompt,
							},
						},
					},
					responses.EasyInputMessageRoleUser,
				),
			},
		},
	}
	if c.maxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(c.maxTokens))
	}

	start := time.Now()
	resp, err := c.client.Responses.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		return "", err
	}
	c.logger.Infow("OpenAI response received", "model", c.model, "duration", dur.String())

	out := resp.OutputText()
	if strings.TrimSpace(out) == "" {
		return "", errors.New("openai: empty response")
	}
	return out, nil
}
