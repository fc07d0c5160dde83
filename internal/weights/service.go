package weights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/fdg312/cut-sprint/internal/trends"
	"github.com/google/uuid"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrWeightNotFound = errors.New("weight not found")
)

const (
	DefaultWindowDays     = 30
	DefaultMovingWindow   = 7
	DefaultPredictWeeks   = 4
	MaxPredictWeeks       = 12
	ReminderAfterDays     = 3
	maxWindowDays         = 365
	movingAverageLookback = 10
)

// Service ведёт дневник веса и аналитику по нему
type Service struct {
	weights storage.WeightsStorage
	now     func() time.Time
}

func NewService(weights storage.WeightsStorage) *Service {
	return &Service{weights: weights, now: time.Now}
}

// SetClock overrides the wall clock (tests).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) today() time.Time {
	return dates.Day(s.now())
}

func (s *Service) Add(ctx context.Context, userID string, req AddWeightRequest) (*WeightDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	date, err := dates.ParseOr(req.Date, s.today())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	source := req.Source
	if source == "" {
		source = storage.WeightSourceManual
	}
	sample := &storage.WeightSample{
		UserID:  userID,
		Date:    date,
		ValueKg: req.ValueKg,
		Flags:   req.Flags,
		Source:  source,
		Notes:   strings.TrimSpace(req.Notes),
	}
	if err := s.weights.AddWeight(ctx, sample); err != nil {
		return nil, fmt.Errorf("failed to add weight: %w", err)
	}

	dto := weightToDTO(*sample)
	return &dto, nil
}

// List returns samples in [from, to]; flag, when set, keeps only samples carrying it.
func (s *Service) List(ctx context.Context, userID string, from, to time.Time, flag string) (*WeightsResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidRequest)
	}

	samples, err := s.weights.ListWeights(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}

	resp := &WeightsResponse{Weights: make([]WeightDTO, 0, len(samples))}
	for _, w := range samples {
		if flag != "" && !hasFlag(w.Flags, flag) {
			continue
		}
		resp.Weights = append(resp.Weights, weightToDTO(w))
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	err := s.weights.DeleteWeight(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrWeightNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete weight: %w", err)
	}
	return nil
}

// Trend labels each weigh-in of the last days against the previous one.
func (s *Service) Trend(ctx context.Context, userID string, days int) (*TrendResponse, error) {
	days = clampDays(days, DefaultWindowDays)
	points, err := s.window(ctx, userID, days)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(points))
	for _, p := range points {
		values = append(values, p.Value)
	}

	resp := &TrendResponse{
		Days:      days,
		Direction: trends.ClassifyTrend(values, trends.AbsoluteThreshold(trends.WeightTrendKg)),
		Steps:     []StepDTO{},
	}
	for _, step := range trends.PairwiseTrend(points) {
		resp.Steps = append(resp.Steps, StepDTO{
			Date:   dates.Format(step.Date),
			Weight: step.Value,
			Change: step.Change,
			Trend:  step.Movement,
		})
	}
	return resp, nil
}

func (s *Service) MovingAverage(ctx context.Context, userID string, window int) (*MovingAverageResponse, error) {
	window = clampDays(window, DefaultMovingWindow)
	points, err := s.window(ctx, userID, window+movingAverageLookback)
	if err != nil {
		return nil, err
	}

	resp := &MovingAverageResponse{Window: window, Averages: []AverageDTO{}}
	for _, avg := range trends.MovingAverage(points, window) {
		resp.Averages = append(resp.Averages, AverageDTO{Date: dates.Format(avg.Date), Average: avg.Average})
	}
	return resp, nil
}

func (s *Service) Stats(ctx context.Context, userID string, days int) (*trends.Stats, error) {
	days = clampDays(days, DefaultWindowDays)
	points, err := s.window(ctx, userID, days)
	if err != nil {
		return nil, err
	}

	stats := trends.WindowStats(points, days)
	return &stats, nil
}

// Predictions extrapolates the last DefaultWindowDays of weigh-ins.
func (s *Service) Predictions(ctx context.Context, userID string, weeks int) (*PredictionsResponse, error) {
	if weeks <= 0 {
		weeks = DefaultPredictWeeks
	}
	if weeks > MaxPredictWeeks {
		return nil, fmt.Errorf("%w: weeks must be at most %d", ErrInvalidRequest, MaxPredictWeeks)
	}

	points, err := s.window(ctx, userID, DefaultWindowDays)
	if err != nil {
		return nil, err
	}

	resp := &PredictionsResponse{Predictions: []PredictionDTO{}}
	for _, p := range trends.Predict(points, weeks) {
		resp.Predictions = append(resp.Predictions, PredictionDTO{
			Date:            dates.Format(p.Date),
			PredictedWeight: p.PredictedValue,
			Confidence:      p.Confidence,
		})
	}
	return resp, nil
}

// Change returns a nil Change when [from, to] holds fewer than 2 samples.
func (s *Service) Change(ctx context.Context, userID string, from, to time.Time) (*ChangeResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidRequest)
	}

	samples, err := s.weights.ListWeights(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}

	return &ChangeResponse{
		From:   dates.Format(from),
		To:     dates.Format(to),
		Change: trends.WeightChange(toPoints(samples), from, to),
	}, nil
}

// Reminder напоминает о взвешивании, если последнее было больше ReminderAfterDays дней назад.
func (s *Service) Reminder(ctx context.Context, userID string) (*ReminderResponse, error) {
	resp := &ReminderResponse{ReminderAfterDays: ReminderAfterDays}

	latest, err := s.weights.LatestWeight(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		resp.ShouldRemind = true
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest weight: %w", err)
	}

	last := dates.Format(latest.Date)
	days := dates.DaysBetween(latest.Date, s.today())
	resp.LastWeighIn = &last
	resp.DaysSinceLast = &days
	resp.ShouldRemind = days > ReminderAfterDays
	return resp, nil
}

// window returns the points of the last days up to today.
func (s *Service) window(ctx context.Context, userID string, days int) ([]trends.Point, error) {
	to := s.today()
	from := to.AddDate(0, 0, -days)

	samples, err := s.weights.ListWeights(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}
	return toPoints(samples), nil
}

func clampDays(days, fallback int) int {
	if days <= 0 {
		return fallback
	}
	if days > maxWindowDays {
		return maxWindowDays
	}
	return days
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
