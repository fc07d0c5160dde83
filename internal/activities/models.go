package activities

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

const (
	// ReferenceWeightKg is the body weight the burn rates are measured for.
	ReferenceWeightKg = 70.0

	maxDurationMinutes = 480
	maxCalories        = 2000
	maxNotes           = 500
	minUserWeightKg    = 30
	maxUserWeightKg    = 300
)

// burnRates: ккал в минуту для человека 70 кг.
var burnRates = map[string]float64{
	storage.ActivityTypeRunning:     11.5,
	storage.ActivityTypeCycling:     8.0,
	storage.ActivityTypeSwimming:    9.0,
	storage.ActivityTypeStrength:    6.0,
	storage.ActivityTypeFlexibility: 2.5,
	storage.ActivityTypeMixed:       7.5,
	storage.ActivityTypeWalking:     4.0,
}

func ValidType(t string) bool {
	_, ok := burnRates[t]
	return ok
}

func typeList() string {
	return "running, cycling, swimming, strength, flexibility, mixed, walking"
}

// BurnRate returns kcal per minute for activityType at weightKg.
func BurnRate(activityType string, weightKg float64) float64 {
	return burnRates[activityType] * weightKg / ReferenceWeightKg
}

// CaloriesBurned scales the per-minute rate linearly by duration and body weight.
func CaloriesBurned(activityType string, minutes int, weightKg float64) int {
	return int(math.Round(BurnRate(activityType, weightKg) * float64(minutes)))
}

func validateDuration(minutes int) error {
	if minutes < 1 || minutes > maxDurationMinutes {
		return fmt.Errorf("duration_minutes must be between 1 and %d", maxDurationMinutes)
	}
	return nil
}

func validateCalories(kcal *int) error {
	if kcal != nil && (*kcal < 0 || *kcal > maxCalories) {
		return fmt.Errorf("estimated_calories must be between 0 and %d", maxCalories)
	}
	return nil
}

// CreateActivityRequest is the body of POST /v1/activities.
// Without estimated_calories the burn is computed from type, duration and the user's weight.
type CreateActivityRequest struct {
	Date              string `json:"date"`
	Type              string `json:"type"`
	DurationMinutes   int    `json:"duration_minutes"`
	EstimatedCalories *int   `json:"estimated_calories"`
	Notes             string `json:"notes"`
}

func (r *CreateActivityRequest) Validate() error {
	if !ValidType(r.Type) {
		return fmt.Errorf("type must be one of %s", typeList())
	}
	if err := validateDuration(r.DurationMinutes); err != nil {
		return err
	}
	if err := validateCalories(r.EstimatedCalories); err != nil {
		return err
	}
	if len(strings.TrimSpace(r.Notes)) > maxNotes {
		return fmt.Errorf("notes must be at most %d characters", maxNotes)
	}
	return nil
}

// UpdateActivityRequest is the body of PUT /v1/activities/{id}; nil fields keep their value.
type UpdateActivityRequest struct {
	Date              *string `json:"date"`
	Type              *string `json:"type"`
	DurationMinutes   *int    `json:"duration_minutes"`
	EstimatedCalories *int    `json:"estimated_calories"`
	Notes             *string `json:"notes"`
}

func (r *UpdateActivityRequest) Validate() error {
	if r.Type != nil && !ValidType(*r.Type) {
		return fmt.Errorf("type must be one of %s", typeList())
	}
	if r.DurationMinutes != nil {
		if err := validateDuration(*r.DurationMinutes); err != nil {
			return err
		}
	}
	if err := validateCalories(r.EstimatedCalories); err != nil {
		return err
	}
	if r.Notes != nil && len(strings.TrimSpace(*r.Notes)) > maxNotes {
		return fmt.Errorf("notes must be at most %d characters", maxNotes)
	}
	return nil
}

// CalculateRequest is the body of POST /v1/activities/calculate-calories.
// Zero user_weight_kg means the caller's latest weigh-in.
type CalculateRequest struct {
	Type            string  `json:"type"`
	DurationMinutes int     `json:"duration_minutes"`
	UserWeightKg    float64 `json:"user_weight_kg"`
}

func (r *CalculateRequest) Validate() error {
	if !ValidType(r.Type) {
		return fmt.Errorf("type must be one of %s", typeList())
	}
	if err := validateDuration(r.DurationMinutes); err != nil {
		return err
	}
	if r.UserWeightKg != 0 && (r.UserWeightKg < minUserWeightKg || r.UserWeightKg > maxUserWeightKg) {
		return fmt.Errorf("user_weight_kg must be between %d and %d", minUserWeightKg, maxUserWeightKg)
	}
	return nil
}

type CalculateResponse struct {
	Type            string  `json:"type"`
	DurationMinutes int     `json:"duration_minutes"`
	UserWeightKg    float64 `json:"user_weight_kg"`
	Calories        int     `json:"calories"`
}

type ActivityDTO struct {
	ID                uuid.UUID `json:"id"`
	Date              string    `json:"date"`
	Type              string    `json:"type"`
	DurationMinutes   int       `json:"duration_minutes"`
	EstimatedCalories int       `json:"estimated_calories"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ActivitiesResponse struct {
	From          string        `json:"from"`
	To            string        `json:"to"`
	Activities    []ActivityDTO `json:"activities"`
	TotalCalories int           `json:"total_calories"`
}

type DayBurn struct {
	Date     string `json:"date"`
	Calories int    `json:"calories"`
}

// BurnedResponse: сожжённые калории за день или неделю.
type BurnedResponse struct {
	From          string    `json:"from"`
	To            string    `json:"to"`
	Calories      int       `json:"calories"`
	ActivityCount int       `json:"activity_count"`
	Days          []DayBurn `json:"days,omitempty"`
}

type TypeStats struct {
	Count         int `json:"count"`
	TotalDuration int `json:"total_duration"`
	TotalCalories int `json:"total_calories"`
}

type StatsResponse struct {
	From             string               `json:"from"`
	To               string               `json:"to"`
	TotalActivities  int                  `json:"total_activities"`
	TotalDuration    int                  `json:"total_duration"`
	TotalCalories    int                  `json:"total_calories"`
	AverageDuration  int                  `json:"average_duration"`
	MostFrequentType string               `json:"most_frequent_type"`
	TypeBreakdown    map[string]TypeStats `json:"type_breakdown"`
}

// Preset is a ready-made workout suggestion.
type Preset struct {
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration_minutes"`
	Calories        int    `json:"calories"`
	Description     string `json:"description"`
}

type PresetsResponse struct {
	Presets []Preset `json:"presets"`
}

// SuggestionsResponse compares the day's net intake (eaten minus burned) with the target.
type SuggestionsResponse struct {
	Date             string   `json:"date"`
	TargetCalories   int      `json:"target_calories"`
	ConsumedCalories int      `json:"consumed_calories"`
	BurnedCalories   int      `json:"burned_calories"`
	NetCalories      int      `json:"net_calories"`
	ExcessCalories   int      `json:"excess_calories"`
	Message          string   `json:"message"`
	Suggestions      []Preset `json:"suggestions"`
}

func activityToDTO(a storage.Activity) ActivityDTO {
	return ActivityDTO{
		ID:                a.ID,
		Date:              dates.Format(a.Date),
		Type:              a.Type,
		DurationMinutes:   a.DurationMinutes,
		EstimatedCalories: a.EstimatedCalories,
		Notes:             a.Notes,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
