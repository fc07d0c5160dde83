package activities

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/budgets"
	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrActivityNotFound = errors.New("activity not found")
)

const (
	DefaultWindowDays = 30
	maxWindowDays     = 366

	// Порог, выше которого предлагаем интенсивную тренировку вместо прогулки.
	intenseExcessKcal = 300
	maxRunningMinutes = 60
	maxCyclingMinutes = 90
	maxWalkingMinutes = 120
)

// DailyTargets gives the day's calorie target and what was eaten.
// *budgets.Engine satisfies it.
type DailyTargets interface {
	DailyBreakdown(ctx context.Context, userID string, date time.Time) (*budgets.DailyBreakdown, error)
}

// Service ведёт журнал тренировок и считает расход калорий
type Service struct {
	activities storage.ActivitiesStorage
	weights    storage.WeightsStorage
	profiles   storage.ProfilesStorage
	targets    DailyTargets
	now        func() time.Time
}

func NewService(
	activities storage.ActivitiesStorage,
	weights storage.WeightsStorage,
	profiles storage.ProfilesStorage,
	targets DailyTargets,
) *Service {
	return &Service{
		activities: activities,
		weights:    weights,
		profiles:   profiles,
		targets:    targets,
		now:        time.Now,
	}
}

// SetClock overrides the wall clock (tests).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) today() time.Time {
	return dates.Day(s.now())
}

// userWeight: последнее взвешивание, затем вес из профиля, затем эталонные 70 кг.
func (s *Service) userWeight(ctx context.Context, userID string) (float64, error) {
	sample, err := s.weights.LatestWeight(ctx, userID)
	switch {
	case err == nil:
		return sample.ValueKg, nil
	case !errors.Is(err, storage.ErrNotFound):
		return 0, fmt.Errorf("failed to get latest weight: %w", err)
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil:
		if profile.WeightKg != nil && *profile.WeightKg > 0 {
			return *profile.WeightKg, nil
		}
	case !errors.Is(err, storage.ErrNotFound):
		return 0, fmt.Errorf("failed to get profile: %w", err)
	}
	return ReferenceWeightKg, nil
}

func (s *Service) Create(ctx context.Context, userID string, req CreateActivityRequest) (*ActivityDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	date, err := dates.ParseOr(req.Date, s.today())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	calories, err := s.resolveCalories(ctx, userID, req.Type, req.DurationMinutes, req.EstimatedCalories)
	if err != nil {
		return nil, err
	}

	activity := &storage.Activity{
		UserID:            userID,
		Date:              date,
		Type:              req.Type,
		DurationMinutes:   req.DurationMinutes,
		EstimatedCalories: calories,
		Notes:             strings.TrimSpace(req.Notes),
	}
	if err := s.activities.CreateActivity(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	log.Printf("INFO activities: user=%s logged %s %dmin %dkcal on %s",
		userID, activity.Type, activity.DurationMinutes, activity.EstimatedCalories, dates.Format(date))

	dto := activityToDTO(*activity)
	return &dto, nil
}

// resolveCalories keeps an explicit value (0 included) and estimates otherwise.
func (s *Service) resolveCalories(ctx context.Context, userID, activityType string, minutes int, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	weight, err := s.userWeight(ctx, userID)
	if err != nil {
		return 0, err
	}
	return CaloriesBurned(activityType, minutes, weight), nil
}

func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*ActivityDTO, error) {
	activity, err := s.activities.GetActivity(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	dto := activityToDTO(*activity)
	return &dto, nil
}

// List returns activities in [from, to]; activityType, when set, filters by type.
func (s *Service) List(ctx context.Context, userID string, from, to time.Time, activityType string) (*ActivitiesResponse, error) {
	from, to, err := checkRange(from, to)
	if err != nil {
		return nil, err
	}
	if activityType != "" && !ValidType(activityType) {
		return nil, fmt.Errorf("%w: type must be one of %s", ErrInvalidRequest, typeList())
	}

	items, err := s.activities.ListActivities(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	resp := &ActivitiesResponse{
		From:       dates.Format(from),
		To:         dates.Format(to),
		Activities: make([]ActivityDTO, 0, len(items)),
	}
	for _, a := range items {
		if activityType != "" && a.Type != activityType {
			continue
		}
		resp.Activities = append(resp.Activities, activityToDTO(a))
		resp.TotalCalories += a.EstimatedCalories
	}
	return resp, nil
}

// Update applies the non-nil fields. A changed type or duration re-estimates
// the burn unless estimated_calories is sent too.
func (s *Service) Update(ctx context.Context, userID string, id uuid.UUID, req UpdateActivityRequest) (*ActivityDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	activity, err := s.activities.GetActivity(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	if req.Date != nil {
		date, err := dates.Parse(*req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		activity.Date = date
	}

	recalc := false
	if req.Type != nil && *req.Type != activity.Type {
		activity.Type = *req.Type
		recalc = true
	}
	if req.DurationMinutes != nil && *req.DurationMinutes != activity.DurationMinutes {
		activity.DurationMinutes = *req.DurationMinutes
		recalc = true
	}
	if req.Notes != nil {
		activity.Notes = strings.TrimSpace(*req.Notes)
	}

	switch {
	case req.EstimatedCalories != nil:
		activity.EstimatedCalories = *req.EstimatedCalories
	case recalc:
		kcal, err := s.resolveCalories(ctx, userID, activity.Type, activity.DurationMinutes, nil)
		if err != nil {
			return nil, err
		}
		activity.EstimatedCalories = kcal
	}

	if err := s.activities.UpdateActivity(ctx, activity); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	dto := activityToDTO(*activity)
	return &dto, nil
}

func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	err := s.activities.DeleteActivity(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrActivityNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

// DailyBurned sums the burn logged on date.
func (s *Service) DailyBurned(ctx context.Context, userID string, date time.Time) (*BurnedResponse, error) {
	date = dates.Day(date)
	items, err := s.activities.ListActivities(ctx, userID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	resp := &BurnedResponse{From: dates.Format(date), To: dates.Format(date), ActivityCount: len(items)}
	for _, a := range items {
		resp.Calories += a.EstimatedCalories
	}
	return resp, nil
}

// WeeklyBurned sums the Monday..Sunday week containing day, with a per-day split.
func (s *Service) WeeklyBurned(ctx context.Context, userID string, day time.Time) (*BurnedResponse, error) {
	start := dates.WeekStart(day)
	end := dates.WeekEnd(day)

	items, err := s.activities.ListActivities(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	perDay := make(map[string]int, 7)
	resp := &BurnedResponse{From: dates.Format(start), To: dates.Format(end), ActivityCount: len(items)}
	for _, a := range items {
		perDay[dates.Format(a.Date)] += a.EstimatedCalories
		resp.Calories += a.EstimatedCalories
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := dates.Format(d)
		resp.Days = append(resp.Days, DayBurn{Date: key, Calories: perDay[key]})
	}
	return resp, nil
}

// Stats aggregates activities in [from, to]. Ties for the most frequent type
// go to the alphabetically first one.
func (s *Service) Stats(ctx context.Context, userID string, from, to time.Time) (*StatsResponse, error) {
	from, to, err := checkRange(from, to)
	if err != nil {
		return nil, err
	}

	items, err := s.activities.ListActivities(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	resp := &StatsResponse{
		From:          dates.Format(from),
		To:            dates.Format(to),
		TypeBreakdown: make(map[string]TypeStats),
	}
	for _, a := range items {
		resp.TotalActivities++
		resp.TotalDuration += a.DurationMinutes
		resp.TotalCalories += a.EstimatedCalories

		ts := resp.TypeBreakdown[a.Type]
		ts.Count++
		ts.TotalDuration += a.DurationMinutes
		ts.TotalCalories += a.EstimatedCalories
		resp.TypeBreakdown[a.Type] = ts
	}
	if resp.TotalActivities == 0 {
		return resp, nil
	}

	resp.AverageDuration = int(math.Round(float64(resp.TotalDuration) / float64(resp.TotalActivities)))

	types := make([]string, 0, len(resp.TypeBreakdown))
	for t := range resp.TypeBreakdown {
		types = append(types, t)
	}
	sort.Strings(types)
	best := 0
	for _, t := range types {
		if c := resp.TypeBreakdown[t].Count; c > best {
			best = c
			resp.MostFrequentType = t
		}
	}
	return resp, nil
}

// Calculate estimates a burn without saving anything.
func (s *Service) Calculate(ctx context.Context, userID string, req CalculateRequest) (*CalculateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	weight := req.UserWeightKg
	if weight == 0 {
		w, err := s.userWeight(ctx, userID)
		if err != nil {
			return nil, err
		}
		weight = w
	}
	return &CalculateResponse{
		Type:            req.Type,
		DurationMinutes: req.DurationMinutes,
		UserWeightKg:    weight,
		Calories:        CaloriesBurned(req.Type, req.DurationMinutes, weight),
	}, nil
}

var presetTemplates = []struct {
	activityType string
	minutes      int
	description  string
}{
	{storage.ActivityTypeRunning, 20, "Quick run"},
	{storage.ActivityTypeCycling, 30, "Easy bike ride"},
	{storage.ActivityTypeStrength, 25, "Short strength session"},
	{storage.ActivityTypeFlexibility, 20, "Stretching"},
	{storage.ActivityTypeMixed, 30, "Circuit training"},
	{storage.ActivityTypeWalking, 45, "Brisk walk"},
}

// Presets returns quick workouts with the burn estimated for the user's weight.
func (s *Service) Presets(ctx context.Context, userID string) (*PresetsResponse, error) {
	weight, err := s.userWeight(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &PresetsResponse{Presets: make([]Preset, 0, len(presetTemplates))}
	for _, p := range presetTemplates {
		resp.Presets = append(resp.Presets, Preset{
			Type:            p.activityType,
			DurationMinutes: p.minutes,
			Calories:        CaloriesBurned(p.activityType, p.minutes, weight),
			Description:     p.description,
		})
	}
	return resp, nil
}

// Suggestions compares net intake (eaten minus burned) with the day's target and
// proposes workouts that would cover the excess. Over 300 kcal it offers running
// or cycling, a smaller excess gets a walk, a deficit gets nothing.
func (s *Service) Suggestions(ctx context.Context, userID string, date time.Time) (*SuggestionsResponse, error) {
	date = dates.Day(date)

	day, err := s.targets.DailyBreakdown(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	burned, err := s.DailyBurned(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	weight, err := s.userWeight(ctx, userID)
	if err != nil {
		return nil, err
	}

	net := day.ActualCalories - burned.Calories
	excess := net - day.TargetCalories
	resp := &SuggestionsResponse{
		Date:             dates.Format(date),
		TargetCalories:   day.TargetCalories,
		ConsumedCalories: day.ActualCalories,
		BurnedCalories:   burned.Calories,
		NetCalories:      net,
		ExcessCalories:   max(excess, 0),
		Suggestions:      []Preset{},
	}

	switch {
	case excess > intenseExcessKcal:
		resp.Message = fmt.Sprintf("You are %d kcal over target. A longer workout will cover it.", excess)
		resp.Suggestions = append(resp.Suggestions,
			coverExcess(storage.ActivityTypeRunning, excess, weight, maxRunningMinutes, "Run to cover the excess"),
			coverExcess(storage.ActivityTypeCycling, excess, weight, maxCyclingMinutes, "Bike ride to cover the excess"),
		)
	case excess > 0:
		resp.Message = fmt.Sprintf("You are %d kcal over target. A walk is enough.", excess)
		resp.Suggestions = append(resp.Suggestions,
			coverExcess(storage.ActivityTypeWalking, excess, weight, maxWalkingMinutes, "Walk to cover the excess"),
		)
	default:
		resp.Message = "You are within your target. No extra activity needed."
	}
	return resp, nil
}

func coverExcess(activityType string, excess int, weightKg float64, capMinutes int, description string) Preset {
	minutes := int(math.Ceil(float64(excess) / BurnRate(activityType, weightKg)))
	minutes = min(max(minutes, 1), capMinutes)
	return Preset{
		Type:            activityType,
		DurationMinutes: minutes,
		Calories:        CaloriesBurned(activityType, minutes, weightKg),
		Description:     description,
	}
}

func checkRange(from, to time.Time) (time.Time, time.Time, error) {
	from, to = dates.Day(from), dates.Day(to)
	if from.After(to) {
		return from, to, fmt.Errorf("%w: from must not be after to", ErrInvalidRequest)
	}
	if dates.DaysBetween(from, to) > maxWindowDays {
		return from, to, fmt.Errorf("%w: range must not exceed %d days", ErrInvalidRequest, maxWindowDays)
	}
	return from, to, nil
}
