// Package trends содержит чистые функции анализа временных рядов:
// классификацию тренда, скользящее среднее, прогноз и изменение веса.
package trends

import (
	"math"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
)

// Direction is the trend direction over the two halves of a series.
type Direction string

const (
	Increasing Direction = "increasing"
	Decreasing Direction = "decreasing"
	Stable     Direction = "stable"
)

// Movement классифицирует шаг веса между соседними измерениями
type Movement string

const (
	Up   Movement = "up"
	Down Movement = "down"
	Flat Movement = "stable"
)

// Confidence of a prediction; never increases with the horizon.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

const (
	// NutritionTrendRatio is the relative band used for calorie and protein trends.
	NutritionTrendRatio = 0.05
	// WeightTrendKg is the absolute band used for weight trends.
	WeightTrendKg = 0.5
	// StepThresholdKg separates up/down from stable between two weigh-ins.
	StepThresholdKg = 0.1
)

// Point значение ряда на дату
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Threshold returns the stable band for a series given the first-half average.
type Threshold func(firstAvg float64) float64

// RelativeThreshold treats |second-first| <= ratio*|first| as stable.
func RelativeThreshold(ratio float64) Threshold {
	return func(firstAvg float64) float64 {
		return math.Abs(firstAvg) * ratio
	}
}

// AbsoluteThreshold treats |second-first| <= band as stable.
func AbsoluteThreshold(band float64) Threshold {
	return func(float64) float64 {
		return band
	}
}

// ClassifyTrend сравнивает средние двух половин ряда.
// Середина нечётного ряда попадает во вторую половину; ряд короче 2 считается stable.
func ClassifyTrend(series []float64, threshold Threshold) Direction {
	if len(series) < 2 {
		return Stable
	}

	mid := len(series) / 2
	firstAvg := mean(series[:mid])
	secondAvg := mean(series[mid:])

	diff := secondAvg - firstAvg
	if math.Abs(diff) <= threshold(firstAvg) {
		return Stable
	}
	if diff > 0 {
		return Increasing
	}
	return Decreasing
}

// AveragePoint значение скользящего среднего
type AveragePoint struct {
	Date    time.Time `json:"date"`
	Average float64   `json:"average"`
}

// MovingAverage is a trailing window average over consecutive samples.
// Fewer samples than window yields an empty result.
func MovingAverage(points []Point, window int) []AveragePoint {
	result := []AveragePoint{}
	if window <= 0 || len(points) < window {
		return result
	}

	sum := 0.0
	for i, p := range points {
		sum += p.Value
		if i >= window {
			sum -= points[i-window].Value
		}
		if i >= window-1 {
			result = append(result, AveragePoint{
				Date:    p.Date,
				Average: Round2(sum / float64(window)),
			})
		}
	}
	return result
}

// Prediction is a forecast value for a date.
type Prediction struct {
	Date           time.Time  `json:"date"`
	PredictedValue float64    `json:"predicted_value"`
	Confidence     Confidence `json:"confidence"`
}

// AverageDailyChange is (last-first) divided by the days between them.
// ok is false when the series has fewer than 2 points or spans no days.
func AverageDailyChange(points []Point) (change float64, ok bool) {
	if len(points) < 2 {
		return 0, false
	}
	first, last := points[0], points[len(points)-1]
	days := dates.DaysBetween(first.Date, last.Date)
	if days <= 0 {
		return 0, false
	}
	return (last.Value - first.Value) / float64(days), true
}

// Predict линейно экстраполирует ряд на weeksAhead недель от последней точки.
// Нулевое изменение или отсутствие интервала дают пустой прогноз.
func Predict(points []Point, weeksAhead int) []Prediction {
	result := []Prediction{}
	change, ok := AverageDailyChange(points)
	if !ok || change == 0 || weeksAhead <= 0 {
		return result
	}

	last := points[len(points)-1]
	for week := 1; week <= weeksAhead; week++ {
		days := week * 7
		result = append(result, Prediction{
			Date:           last.Date.AddDate(0, 0, days),
			PredictedValue: Round2(last.Value + change*float64(days)),
			Confidence:     ConfidenceForWeek(week),
		})
	}
	return result
}

// ConfidenceForWeek: недели 1-2 high, 3 medium, дальше low.
func ConfidenceForWeek(week int) Confidence {
	switch {
	case week <= 2:
		return ConfidenceHigh
	case week == 3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Change изменение значения на интервале
type Change struct {
	StartValue    float64 `json:"start_weight"`
	EndValue      float64 `json:"end_weight"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// WeightChange returns nil when fewer than 2 samples fall into [start, end].
// Points must be ordered by date.
func WeightChange(points []Point, start, end time.Time) *Change {
	inRange := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		inRange = append(inRange, p)
	}
	if len(inRange) < 2 {
		return nil
	}

	first, last := inRange[0].Value, inRange[len(inRange)-1].Value
	change := Round2(last - first)
	percent := 0.0
	if first != 0 {
		percent = Round2(change / first * 100)
	}

	return &Change{
		StartValue:    first,
		EndValue:      last,
		Change:        change,
		ChangePercent: percent,
	}
}

// Step изменение относительно предыдущего измерения
type Step struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"weight"`
	Change   float64   `json:"change"`
	Movement Movement  `json:"trend"`
}

// PairwiseTrend labels every sample after the first as up, down or stable
// against its predecessor.
func PairwiseTrend(points []Point) []Step {
	steps := []Step{}
	for i := 1; i < len(points); i++ {
		change := Round2(points[i].Value - points[i-1].Value)
		steps = append(steps, Step{
			Date:     points[i].Date,
			Value:    points[i].Value,
			Change:   change,
			Movement: classifyMovement(change, StepThresholdKg),
		})
	}
	return steps
}

// Stats сводка по весу за окно
type Stats struct {
	Current       float64  `json:"current_weight"`
	Start         float64  `json:"start_weight"`
	TotalChange   float64  `json:"total_change"`
	AverageChange float64  `json:"average_change"`
	Highest       float64  `json:"highest_weight"`
	Lowest        float64  `json:"lowest_weight"`
	Trend         Movement `json:"trend"`
}

// WindowStats summarizes points observed in a window of windowDays.
// AverageChange is per calendar day of the window.
func WindowStats(points []Point, windowDays int) Stats {
	if len(points) == 0 {
		return Stats{Trend: Flat}
	}

	stats := Stats{
		Current: points[len(points)-1].Value,
		Start:   points[0].Value,
		Highest: points[0].Value,
		Lowest:  points[0].Value,
	}
	for _, p := range points {
		stats.Highest = math.Max(stats.Highest, p.Value)
		stats.Lowest = math.Min(stats.Lowest, p.Value)
	}

	stats.TotalChange = Round2(stats.Current - stats.Start)
	if windowDays > 0 {
		stats.AverageChange = Round2(stats.TotalChange / float64(windowDays))
	}
	stats.Trend = classifyMovement(stats.TotalChange, WeightTrendKg)

	return stats
}

func classifyMovement(change, band float64) Movement {
	switch {
	case change > band:
		return Up
	case change < -band:
		return Down
	default:
		return Flat
	}
}

// Round2 rounds half away from zero to 2 decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
