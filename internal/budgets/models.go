package budgets

import (
	"fmt"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

// BudgetDTO недельный бюджет в ответах API
type BudgetDTO struct {
	ID                   uuid.UUID `json:"id"`
	StartDate            string    `json:"start_date"`
	EndDate              string    `json:"end_date"`
	TargetCalories       int       `json:"target_calories"`
	TargetProtein        int       `json:"target_protein"`
	TargetFat            int       `json:"target_fat"`
	TargetCarbs          int       `json:"target_carbs"`
	WeekendBonusCalories int       `json:"weekend_bonus_calories"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type BudgetsResponse struct {
	Budgets []BudgetDTO `json:"budgets"`
}

// DailyBreakdown бюджет и факт за один день
type DailyBreakdown struct {
	Date              string `json:"date"`
	TargetCalories    int    `json:"target_calories"`
	ActualCalories    int    `json:"actual_calories"`
	RemainingCalories int    `json:"remaining_calories"`
	IsWeekend         bool   `json:"is_weekend"`
	WeekendBonus      int    `json:"weekend_bonus"`
}

type CompensationDay struct {
	Date                 string `json:"date"`
	CompensationCalories int    `json:"compensation_calories"`
}

// CompensationPlan распределяет бонус выходных на следующие будние дни.
type CompensationPlan struct {
	WeekendBonus      int               `json:"weekend_bonus"`
	CompensationDays  []CompensationDay `json:"compensation_days"`
	TotalCompensation int               `json:"total_compensation"`
}

// WeeklyProgress прогресс недели. WeightLoss = первое минус последнее взвешивание.
type WeeklyProgress struct {
	WeekStart          string  `json:"week_start"`
	WeekEnd            string  `json:"week_end"`
	TargetCalories     int     `json:"target_calories"`
	ActualCalories     int     `json:"actual_calories"`
	Deficit            int     `json:"deficit"`
	WeightStart        float64 `json:"weight_start"`
	WeightEnd          float64 `json:"weight_end"`
	WeightLoss         float64 `json:"weight_loss"`
	TargetLoss         float64 `json:"target_loss"`
	ProgressPercentage int     `json:"progress_percentage"`
}

type Adjustment struct {
	Type   string `json:"type"`
	Value  int    `json:"value"`
	Reason string `json:"reason"`
}

type Suggestions struct {
	Message     string       `json:"message"`
	Suggestions []string     `json:"suggestions"`
	Adjustments []Adjustment `json:"adjustments"`
}

type Status struct {
	IsOnTrack              bool `json:"is_on_track"`
	RemainingDays          int  `json:"remaining_days"`
	RemainingCalories      int  `json:"remaining_calories"`
	AverageRemainingPerDay int  `json:"average_remaining_per_day"`
	CanAffordWeekend       bool `json:"can_afford_weekend"`
}

// UpdateRequest is the body of PATCH /v1/budgets/{id}; nil fields stay unchanged.
type UpdateRequest struct {
	TargetCalories       *int    `json:"target_calories,omitempty"`
	TargetProtein        *int    `json:"target_protein,omitempty"`
	TargetFat            *int    `json:"target_fat,omitempty"`
	TargetCarbs          *int    `json:"target_carbs,omitempty"`
	WeekendBonusCalories *int    `json:"weekend_bonus_calories,omitempty"`
	Status               *string `json:"status,omitempty"`
}

func (r *UpdateRequest) Validate() error {
	for field, v := range map[string]*int{
		"target_calories":        r.TargetCalories,
		"target_protein":         r.TargetProtein,
		"target_fat":             r.TargetFat,
		"target_carbs":           r.TargetCarbs,
		"weekend_bonus_calories": r.WeekendBonusCalories,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must not be negative", field)
		}
	}
	if r.Status != nil {
		switch *r.Status {
		case storage.BudgetStatusActive, storage.BudgetStatusCompleted, storage.BudgetStatusCancelled:
		default:
			return fmt.Errorf("status must be one of active, completed, cancelled")
		}
	}
	return nil
}

func (r *UpdateRequest) apply(b *storage.WeeklyBudget) {
	if r.TargetCalories != nil {
		b.TargetCalories = *r.TargetCalories
	}
	if r.TargetProtein != nil {
		b.TargetProtein = *r.TargetProtein
	}
	if r.TargetFat != nil {
		b.TargetFat = *r.TargetFat
	}
	if r.TargetCarbs != nil {
		b.TargetCarbs = *r.TargetCarbs
	}
	if r.WeekendBonusCalories != nil {
		b.WeekendBonusCalories = *r.WeekendBonusCalories
	}
	if r.Status != nil {
		b.Status = *r.Status
	}
}

func budgetToDTO(b storage.WeeklyBudget) BudgetDTO {
	return BudgetDTO{
		ID:                   b.ID,
		StartDate:            dates.Format(b.StartDate),
		EndDate:              dates.Format(b.EndDate),
		TargetCalories:       b.TargetCalories,
		TargetProtein:        b.TargetProtein,
		TargetFat:            b.TargetFat,
		TargetCarbs:          b.TargetCarbs,
		WeekendBonusCalories: b.WeekendBonusCalories,
		Status:               b.Status,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}
