package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/config"
)

const maxResponseBytes = 1 << 20

// OpenAIProvider talks to any OpenAI-compatible chat-completions endpoint
// (OpenAI itself or OpenRouter).
type OpenAIProvider struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	appName     string
	appURL      string
	httpClient  *http.Client
}

func NewOpenAIProvider(cfg config.AIConfig) *OpenAIProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &OpenAIProvider{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		appName:     cfg.AppName,
		appURL:      cfg.AppURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if p.apiKey == "" || p.baseURL == "" {
		return "", ErrNotConfigured
	}

	requestPayload := chatCompletionsRequest{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Messages:    req.Messages,
	}
	if req.Temperature > 0 {
		requestPayload.Temperature = req.Temperature
	}
	if req.MaxTokens > 0 {
		requestPayload.MaxTokens = req.MaxTokens
	}

	body, err := json.Marshal(requestPayload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	// OpenRouter attribution headers
	if p.appURL != "" {
		httpReq.Header.Set("HTTP-Referer", p.appURL)
	}
	if p.appName != "" {
		httpReq.Header.Set("X-Title", p.appName)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat completion failed with status %d", resp.StatusCode)
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion response does not contain choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

type chatCompletionsRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
