package ai

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"
)

const mockMealName = "Mock meal"

// MockProvider отвечает детерминированным JSON без сети (local и тесты).
// Reply and Err override the generated answer; Delay simulates a slow upstream.
type MockProvider struct {
	Reply string
	Err   error
	Delay time.Duration

	calls atomic.Int64
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	p.calls.Add(1)

	if p.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.Err != nil {
		return "", p.Err
	}
	if p.Reply != "" {
		return p.Reply, nil
	}

	meal := map[string]any{
		"name": mockMealName, "meal_type": "lunch",
		"calories": 350, "protein": 25, "carbs": 30, "fat": 12,
	}
	payload := map[string]any{
		"type": "nutrition_analysis",
		"data": map[string]any{
			"total_calories": 350,
			"total_protein":  25,
			"total_carbs":    30,
			"total_fat":      12,
			"meals":          []map[string]any{meal},
			"confidence":     "medium",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(body) + "\n```", nil
}

// Calls reports how many completions were requested.
func (p *MockProvider) Calls() int {
	return int(p.calls.Load())
}
