package ai

import "context"

// Client интерфейс бэкенда генерации: один запрос — один ответ, без стриминга.
// Все реализации должны быть взаимозаменяемыми.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
