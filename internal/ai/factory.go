package ai

import (
	"strings"

	"github.com/fdg312/cut-sprint/internal/config"
)

func NewProvider(cfg config.AIConfig) Provider {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = config.AIModeMock
	}

	switch mode {
	case config.AIModeOpenAI, config.AIModeOpenRouter:
		return NewOpenAIProvider(cfg)
	default:
		return NewMockProvider()
	}
}
