package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

// Result types.
const (
	TypeNutritionAnalysis   = "nutrition_analysis"
	TypeClarificationNeeded = "clarification_needed"
)

// Result sources.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

const maxInputLength = 1000

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrQuotaExceeded  = errors.New("daily analysis quota exceeded")
)

// QuotaExceededError несёт счётчики для ответа 429.
type QuotaExceededError struct {
	CurrentUsage int
	DailyLimit   int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily analysis quota exceeded: %d/%d", e.CurrentUsage, e.DailyLimit)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// Kcal is a calorie count. Models often answer with fractions (452.5),
// so decoding accepts any JSON number and rounds it.
type Kcal int

func (k *Kcal) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("calories must be a number: %w", err)
	}
	*k = Kcal(math.Round(v))
	return nil
}

// AnalyzedMeal is one meal recognized in the description.
type AnalyzedMeal struct {
	Name     string  `json:"name"`
	MealType string  `json:"meal_type"`
	Calories Kcal    `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type NutritionAnalysis struct {
	TotalCalories Kcal           `json:"total_calories"`
	TotalProtein  float64        `json:"total_protein"`
	TotalCarbs    float64        `json:"total_carbs"`
	TotalFat      float64        `json:"total_fat"`
	Meals         []AnalyzedMeal `json:"meals"`
	Confidence    string         `json:"confidence"`
	Notes         string         `json:"notes,omitempty"`
}

// AnalysisResult содержит либо разбор питания (Data), либо уточняющий вопрос.
type AnalysisResult struct {
	Type        string             `json:"type"`
	Data        *NutritionAnalysis `json:"data,omitempty"`
	Question    string             `json:"question,omitempty"`
	Suggestions []string           `json:"suggestions,omitempty"`
	Source      string             `json:"source"`
}

// Validate checks the shape an upstream model must return.
func (r *AnalysisResult) Validate() error {
	switch r.Type {
	case TypeNutritionAnalysis:
		if r.Data == nil {
			return fmt.Errorf("nutrition_analysis without data")
		}
		if len(r.Data.Meals) == 0 {
			return fmt.Errorf("nutrition_analysis without meals")
		}
		if r.Data.TotalCalories < 0 || r.Data.TotalProtein < 0 || r.Data.TotalCarbs < 0 || r.Data.TotalFat < 0 {
			return fmt.Errorf("negative totals")
		}
		for i, m := range r.Data.Meals {
			if m.Calories < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
				return fmt.Errorf("meals[%d] has negative values", i)
			}
			switch m.MealType {
			case storage.MealTypeBreakfast, storage.MealTypeLunch, storage.MealTypeDinner, storage.MealTypeSnack:
			default:
				return fmt.Errorf("meals[%d] has unknown meal_type %q", i, m.MealType)
			}
		}
		switch r.Data.Confidence {
		case "high", "medium", "low":
		default:
			return fmt.Errorf("unknown confidence %q", r.Data.Confidence)
		}
	case TypeClarificationNeeded:
		if strings.TrimSpace(r.Question) == "" {
			return fmt.Errorf("clarification_needed without question")
		}
	default:
		return fmt.Errorf("unknown result type %q", r.Type)
	}
	return nil
}

// AnalyzeRequest is the body of POST /v1/analysis/meal.
type AnalyzeRequest struct {
	Text   string `json:"text"`
	Region string `json:"region"`
}

func (r *AnalyzeRequest) Validate() error {
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return fmt.Errorf("text is required")
	}
	if len([]rune(text)) > maxInputLength {
		return fmt.Errorf("text must be at most %d characters", maxInputLength)
	}
	if len(r.Region) > 64 {
		return fmt.Errorf("region must be at most 64 characters")
	}
	return nil
}

// Reservation is a granted slot of the daily quota.
type Reservation struct {
	Date         string `json:"date"`
	CurrentUsage int    `json:"current_usage"`
	DailyLimit   int    `json:"daily_limit"`
	Remaining    int    `json:"remaining"`
}

// UsageResponse is the body of GET /v1/analysis/usage.
type UsageResponse = Reservation

type HistoryEntry struct {
	ID        uuid.UUID       `json:"id"`
	InputText string          `json:"input_text"`
	Region    string          `json:"region"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

type HistoryResponse struct {
	Analyses []HistoryEntry `json:"analyses"`
}

func analysisToEntry(a storage.MealAnalysis) HistoryEntry {
	result := json.RawMessage(a.Result)
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	return HistoryEntry{
		ID:        a.ID,
		InputText: a.InputText,
		Region:    a.Region,
		Type:      a.ResultType,
		Source:    a.Source,
		Result:    result,
		CreatedAt: a.CreatedAt,
	}
}
