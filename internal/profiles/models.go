package profiles

import (
	"fmt"
	"time"

	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/storage"
)

const (
	minWeightKg    = 30.0
	maxWeightKg    = 300.0
	minHeightCm    = 100.0
	maxHeightCm    = 250.0
	minAge         = 14
	maxAge         = 100
	maxWeeklyLoss  = 2.0
	maxRegionRunes = 64
)

// ProfileDTO DTO для API
type ProfileDTO struct {
	WeightKg           *float64  `json:"weight_kg"`
	HeightCm           *float64  `json:"height_cm"`
	Age                *int      `json:"age"`
	Gender             *string   `json:"gender"`
	ActivityLevel      string    `json:"activity_level"`
	TargetWeeklyLossKg float64   `json:"target_weekly_loss_kg"`
	WeekendMode        string    `json:"weekend_mode"`
	WeekendStartDay    int       `json:"weekend_start_day"`
	WeekendEndDay      int       `json:"weekend_end_day"`
	Region             string    `json:"region,omitempty"`
	Complete           bool      `json:"complete"`
	Missing            []string  `json:"missing,omitempty"`
	BMR                *int      `json:"bmr,omitempty"`
	TDEE               *int      `json:"tdee,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UpdateProfileRequest запрос для PUT /v1/profile.
// Поля, которых нет в запросе, не меняются.
type UpdateProfileRequest struct {
	WeightKg           *float64 `json:"weight_kg"`
	HeightCm           *float64 `json:"height_cm"`
	Age                *int     `json:"age"`
	Gender             *string  `json:"gender"`
	ActivityLevel      *string  `json:"activity_level"`
	TargetWeeklyLossKg *float64 `json:"target_weekly_loss_kg"`
	WeekendMode        *string  `json:"weekend_mode"`
	WeekendStartDay    *int     `json:"weekend_start_day"`
	WeekendEndDay      *int     `json:"weekend_end_day"`
	Region             *string  `json:"region"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.WeightKg != nil && (*r.WeightKg < minWeightKg || *r.WeightKg > maxWeightKg) {
		return fmt.Errorf("weight_kg must be between %.0f and %.0f", minWeightKg, maxWeightKg)
	}
	if r.HeightCm != nil && (*r.HeightCm < minHeightCm || *r.HeightCm > maxHeightCm) {
		return fmt.Errorf("height_cm must be between %.0f and %.0f", minHeightCm, maxHeightCm)
	}
	if r.Age != nil && (*r.Age < minAge || *r.Age > maxAge) {
		return fmt.Errorf("age must be between %d and %d", minAge, maxAge)
	}
	if r.Gender != nil && !nutrition.ValidGender(*r.Gender) {
		return fmt.Errorf("gender must be one of male, female, other")
	}
	if r.ActivityLevel != nil {
		if _, ok := nutrition.ActivityMultiplier(*r.ActivityLevel); !ok {
			return fmt.Errorf("activity_level must be one of sedentary, light, moderate, active, very_active")
		}
	}
	if r.TargetWeeklyLossKg != nil && (*r.TargetWeeklyLossKg < 0 || *r.TargetWeeklyLossKg > maxWeeklyLoss) {
		return fmt.Errorf("target_weekly_loss_kg must be between 0 and %.0f", maxWeeklyLoss)
	}
	if r.WeekendMode != nil && *r.WeekendMode != storage.WeekendModeActive && *r.WeekendMode != storage.WeekendModeInactive {
		return fmt.Errorf("weekend_mode must be active or inactive")
	}
	if r.WeekendStartDay != nil && !validWeekday(*r.WeekendStartDay) {
		return fmt.Errorf("weekend_start_day must be between 0 and 6")
	}
	if r.WeekendEndDay != nil && !validWeekday(*r.WeekendEndDay) {
		return fmt.Errorf("weekend_end_day must be between 0 and 6")
	}
	if r.Region != nil && len([]rune(*r.Region)) > maxRegionRunes {
		return fmt.Errorf("region must be at most %d characters", maxRegionRunes)
	}
	return nil
}

// apply копирует заданные поля запроса в профиль
func (r *UpdateProfileRequest) apply(p *storage.UserProfile) {
	if r.WeightKg != nil {
		p.WeightKg = r.WeightKg
	}
	if r.HeightCm != nil {
		p.HeightCm = r.HeightCm
	}
	if r.Age != nil {
		p.Age = r.Age
	}
	if r.Gender != nil {
		p.Gender = r.Gender
	}
	if r.ActivityLevel != nil {
		p.ActivityLevel = *r.ActivityLevel
	}
	if r.TargetWeeklyLossKg != nil {
		p.TargetWeeklyLossKg = *r.TargetWeeklyLossKg
	}
	if r.WeekendMode != nil {
		p.WeekendMode = *r.WeekendMode
	}
	if r.WeekendStartDay != nil {
		p.WeekendStartDay = *r.WeekendStartDay
	}
	if r.WeekendEndDay != nil {
		p.WeekendEndDay = *r.WeekendEndDay
	}
	if r.Region != nil {
		p.Region = *r.Region
	}
}

func validWeekday(d int) bool {
	return d >= 0 && d <= 6
}
