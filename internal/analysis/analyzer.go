package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/ai"
	"github.com/fdg312/cut-sprint/internal/config"
)

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 500
	defaultTimeout     = 15 * time.Second
)

var (
	fencePattern  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// Analyzer asks the model for a nutrition breakdown and falls back to the
// local Estimator on any upstream, timeout or parse failure.
type Analyzer struct {
	provider    ai.Provider
	estimator   *Estimator
	temperature float64
	maxTokens   int
	timeout     time.Duration
	now         func() time.Time
}

func NewAnalyzer(provider ai.Provider, estimator *Estimator, cfg config.AIConfig) *Analyzer {
	a := &Analyzer{
		provider:    provider,
		estimator:   estimator,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		now:         time.Now,
	}
	// 0 допустим (детерминированный ответ), сбрасываем только отрицательные
	if a.temperature < 0 {
		a.temperature = defaultTemperature
	}
	if a.maxTokens <= 0 {
		a.maxTokens = defaultMaxTokens
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	if a.estimator == nil {
		a.estimator = NewEstimator(nil, nil)
	}
	return a
}

// Analyze never fails: upstream errors are logged and absorbed.
func (a *Analyzer) Analyze(ctx context.Context, text, region string) AnalysisResult {
	result, err := a.callModel(ctx, text, region)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			log.Printf("INFO analysis: no model configured, using fallback estimator")
		} else {
			log.Printf("WARN analysis: upstream unavailable, using fallback estimator: %v", err)
		}
		return a.estimator.Estimate(text)
	}
	return result
}

func (a *Analyzer) callModel(ctx context.Context, text, region string) (AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	content, err := a.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: systemPrompt},
			{Role: ai.RoleUser, Content: a.userPrompt(text, region)},
		},
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		return AnalysisResult{}, err
	}

	result, err := ParseResult(content)
	if err != nil {
		return AnalysisResult{}, err
	}
	result.Source = SourceLLM
	return result, nil
}

// ParseResult extracts an AnalysisResult from model output: fenced JSON first,
// then the outermost {...} block.
func ParseResult(content string) (AnalysisResult, error) {
	cleaned := strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		block := objectPattern.FindString(cleaned)
		if block == "" {
			return AnalysisResult{}, fmt.Errorf("no JSON object in model response")
		}
		result = AnalysisResult{}
		if err := json.Unmarshal([]byte(block), &result); err != nil {
			return AnalysisResult{}, fmt.Errorf("failed to parse model response: %w", err)
		}
	}

	if err := result.Validate(); err != nil {
		return AnalysisResult{}, fmt.Errorf("invalid model response: %w", err)
	}
	return result, nil
}

const systemPrompt = "You are a nutrition expert. Always answer with JSON that follows the instructions exactly."

func (a *Analyzer) userPrompt(text, region string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "USER REGION: %s\n", region)
	fmt.Fprintf(&b, "Use standard portion sizes for %s.\n", region)
	fmt.Fprintf(&b, "CURRENT TIME: %s\n\n", a.now().Format("15:04"))
	b.WriteString(`MEAL TYPE RULES (when the description does not say):
- before 12:00 = breakfast
- 12:00-16:00 = lunch
- 16:00-20:00 = dinner
- after 20:00 = snack
If the description contains several meals, split them.

RESPONSE FORMAT:
- With enough information return:
{"type":"nutrition_analysis","data":{"total_calories":0,"total_protein":0,"total_carbs":0,"total_fat":0,"meals":[{"name":"","meal_type":"breakfast|lunch|dinner|snack","calories":0,"protein":0,"carbs":0,"fat":0}],"confidence":"high|medium|low","notes":""}}
- When the amount is missing return:
{"type":"clarification_needed","question":"","suggestions":[""]}

MEAL DESCRIPTION:
`)
	fmt.Fprintf(&b, "%q\n\nANSWER (JSON only):", text)
	return b.String()
}
