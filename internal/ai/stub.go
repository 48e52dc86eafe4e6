package ai

import (
	"context"
	"fmt"
	"strings"
)

// StubClient заглушка, которая не делает реальных запросов. Нужна для офлайн-запуска и демо.
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(prompt), "\n")
	if len(first) > 120 {
		first = first[:120] + "…"
	}
	return fmt.Sprintf("[stub] запрос получен (%d символов): %s", len(prompt), first), nil
}
