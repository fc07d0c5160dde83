package weights

import (
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/fdg312/cut-sprint/internal/trends"
	"github.com/google/uuid"
)

const (
	minWeightKg = 30
	maxWeightKg = 300
)

// AddWeightRequest is the body of POST /v1/weights. Empty date means today.
type AddWeightRequest struct {
	Date    string   `json:"date"`
	ValueKg float64  `json:"value_kg"`
	Flags   []string `json:"flags"`
	Source  string   `json:"source"`
	Notes   string   `json:"notes"`
}

func (r *AddWeightRequest) Validate() error {
	if r.ValueKg < minWeightKg || r.ValueKg > maxWeightKg {
		return fmt.Errorf("value_kg must be between %d and %d", minWeightKg, maxWeightKg)
	}
	switch r.Source {
	case "", storage.WeightSourceManual, storage.WeightSourceAppleHealth, storage.WeightSourceGoogleFit:
	default:
		return fmt.Errorf("source must be one of manual, apple_health, google_fit")
	}
	for _, f := range r.Flags {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("flags must not contain empty values")
		}
	}
	return nil
}

type WeightDTO struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	ValueKg   float64   `json:"value_kg"`
	Flags     []string  `json:"flags"`
	Source    string    `json:"source"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type WeightsResponse struct {
	Weights []WeightDTO `json:"weights"`
}

type StepDTO struct {
	Date   string          `json:"date"`
	Weight float64         `json:"weight"`
	Change float64         `json:"change"`
	Trend  trends.Movement `json:"trend"`
}

// TrendResponse: пошаговые изменения и общее направление за окно.
type TrendResponse struct {
	Days      int              `json:"days"`
	Direction trends.Direction `json:"direction"`
	Steps     []StepDTO        `json:"steps"`
}

type AverageDTO struct {
	Date    string  `json:"date"`
	Average float64 `json:"average"`
}

type MovingAverageResponse struct {
	Window   int          `json:"window"`
	Averages []AverageDTO `json:"averages"`
}

type PredictionDTO struct {
	Date            string            `json:"date"`
	PredictedWeight float64           `json:"predicted_weight"`
	Confidence      trends.Confidence `json:"confidence"`
}

type PredictionsResponse struct {
	Predictions []PredictionDTO `json:"predictions"`
}

// ChangeResponse carries a nil Change when the range has fewer than 2 samples.
type ChangeResponse struct {
	From   string         `json:"from"`
	To     string         `json:"to"`
	Change *trends.Change `json:"change"`
}

type ReminderResponse struct {
	ShouldRemind      bool    `json:"should_remind"`
	LastWeighIn       *string `json:"last_weigh_in"`
	DaysSinceLast     *int    `json:"days_since_last"`
	ReminderAfterDays int     `json:"reminder_after_days"`
}

func weightToDTO(w storage.WeightSample) WeightDTO {
	flags := w.Flags
	if flags == nil {
		flags = []string{}
	}
	return WeightDTO{
		ID:        w.ID,
		Date:      dates.Format(w.Date),
		ValueKg:   w.ValueKg,
		Flags:     flags,
		Source:    w.Source,
		Notes:     w.Notes,
		CreatedAt: w.CreatedAt,
	}
}

func toPoints(samples []storage.WeightSample) []trends.Point {
	points := make([]trends.Point, 0, len(samples))
	for _, s := range samples {
		points = append(points, trends.Point{Date: s.Date, Value: s.ValueKg})
	}
	return points
}
