package ai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by providers that have no credentials.
var ErrNotConfigured = errors.New("ai provider is not configured")

// Provider отправляет запрос в LLM и возвращает текст ответа
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is one chat-completions call.
// Zero Temperature and MaxTokens fall back to the provider defaults.
type CompletionRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)
