package meals

import (
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/fdg312/cut-sprint/internal/trends"
	"github.com/google/uuid"
)

const (
	maxMealCalories = 10000
	maxMealMacroG   = 1000
	maxItemGrams    = 5000
	maxDescription  = 500
)

// MealItemRequest references a catalog product and its weight in grams.
type MealItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Grams     float64   `json:"grams"`
}

// DuplicateRequest is the body of POST /v1/meals/duplicate-yesterday. Empty target_date means today.
type DuplicateRequest struct {
	TargetDate string `json:"target_date"`
}

// CreateMealRequest is the body of POST /v1/meals.
// With items the totals are computed from the product catalog and the explicit totals are ignored.
type CreateMealRequest struct {
	Date        string            `json:"date"`
	MealType    string            `json:"meal_type"`
	Description string            `json:"description"`
	Calories    int               `json:"calories"`
	ProteinG    float64           `json:"protein_g"`
	FatG        float64           `json:"fat_g"`
	CarbsG      float64           `json:"carbs_g"`
	Items       []MealItemRequest `json:"items,omitempty"`
}

func (r *CreateMealRequest) Validate() error {
	if !ValidMealType(r.MealType) {
		return fmt.Errorf("meal_type must be one of breakfast, lunch, dinner, snack")
	}
	if len(strings.TrimSpace(r.Description)) > maxDescription {
		return fmt.Errorf("description must be at most %d characters", maxDescription)
	}

	if len(r.Items) > 0 {
		for i, item := range r.Items {
			if item.ProductID == uuid.Nil {
				return fmt.Errorf("items[%d].product_id is required", i)
			}
			if item.Grams <= 0 || item.Grams > maxItemGrams {
				return fmt.Errorf("items[%d].grams must be between 0 and %d", i, maxItemGrams)
			}
		}
		return nil
	}

	if r.Calories < 0 || r.Calories > maxMealCalories {
		return fmt.Errorf("calories must be between 0 and %d", maxMealCalories)
	}
	for field, v := range map[string]float64{
		"protein_g": r.ProteinG,
		"fat_g":     r.FatG,
		"carbs_g":   r.CarbsG,
	} {
		if v < 0 || v > maxMealMacroG {
			return fmt.Errorf("%s must be between 0 and %d", field, maxMealMacroG)
		}
	}
	return nil
}

func ValidMealType(t string) bool {
	switch t {
	case storage.MealTypeBreakfast, storage.MealTypeLunch, storage.MealTypeDinner, storage.MealTypeSnack:
		return true
	}
	return false
}

// Totals сумма калорий и БЖУ
type Totals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
}

func (t *Totals) add(m storage.Meal) {
	t.Calories += m.TotalCalories
	t.ProteinG = trends.Round2(t.ProteinG + m.TotalProtein)
	t.FatG = trends.Round2(t.FatG + m.TotalFat)
	t.CarbsG = trends.Round2(t.CarbsG + m.TotalCarbs)
}

type MealDTO struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	MealType    string    `json:"meal_type"`
	Description string    `json:"description,omitempty"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"protein_g"`
	FatG        float64   `json:"fat_g"`
	CarbsG      float64   `json:"carbs_g"`
	CreatedAt   time.Time `json:"created_at"`
}

// MealsResponse is the body of GET /v1/meals.
type MealsResponse struct {
	Date   string    `json:"date"`
	Meals  []MealDTO `json:"meals"`
	Totals Totals    `json:"totals"`
}

// DailySummary итоги одного дня
type DailySummary struct {
	Date      string `json:"date"`
	MealCount int    `json:"meal_count"`
	Totals    Totals `json:"totals"`
}

// WeeklySummary covers Monday..Sunday of the requested week; Days always has 7 entries.
type WeeklySummary struct {
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	Totals          Totals         `json:"totals"`
	AverageCalories int            `json:"average_calories"`
	Days            []DailySummary `json:"days"`
}

// Insight status values.
const (
	InsightHigh   = "high"
	InsightLow    = "low"
	InsightNormal = "normal"
)

type Insight struct {
	Type   string  `json:"type"`
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

// TrendsResponse: дневные итоги за окно, тренды по макросам и выводы.
type TrendsResponse struct {
	Days            int              `json:"days"`
	Summaries       []DailySummary   `json:"summaries"`
	CaloriesTrend   trends.Direction `json:"calories_trend"`
	ProteinTrend    trends.Direction `json:"protein_trend"`
	FatTrend        trends.Direction `json:"fat_trend"`
	CarbsTrend      trends.Direction `json:"carbs_trend"`
	Insights        []Insight        `json:"insights"`
	Recommendations []string         `json:"recommendations"`
}

// Suggestion focus values.
const (
	FocusProtein = "protein"
	FocusCarbs   = "carbs"
	FocusFat     = "fat"
	FocusNone    = "none"
)

// ProductHint is a catalog product rich in the missing macro.
type ProductHint struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Per100g float64   `json:"per_100g"`
}

type SuggestionsResponse struct {
	Date      string                `json:"date"`
	Target    nutrition.DailyTarget `json:"target"`
	Consumed  Totals                `json:"consumed"`
	Remaining Totals                `json:"remaining"`
	Focus     string                `json:"focus"`
	Message   string                `json:"message"`
	Products  []ProductHint         `json:"products"`
}

func mealToDTO(m storage.Meal) MealDTO {
	return MealDTO{
		ID:          m.ID,
		Date:        dates.Format(m.Date),
		MealType:    m.MealType,
		Description: m.Description,
		Calories:    m.TotalCalories,
		ProteinG:    m.TotalProtein,
		FatG:        m.TotalFat,
		CarbsG:      m.TotalCarbs,
		CreatedAt:   m.CreatedAt,
	}
}
