package budgets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/fdg312/cut-sprint/internal/trends"
	"github.com/google/uuid"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrBudgetNotFound = errors.New("budget not found")
	ErrBudgetConflict = errors.New("another active budget exists for this week")
)

const (
	// CompensationDays is how many weekdays absorb a weekend bonus.
	CompensationDays = 3
	// MinAffordableDailyKcal is the per-day average below which the weekend is unaffordable.
	MinAffordableDailyKcal = 1200

	defaultListLimit = 10
	maxListLimit     = 52
)

// Engine управляет недельным бюджетом пользователя
type Engine struct {
	profiles storage.ProfilesStorage
	budgets  storage.BudgetsStorage
	meals    storage.MealsStorage
	weights  storage.WeightsStorage
	calc     *nutrition.Calculator
	now      func() time.Time
}

func NewEngine(
	profiles storage.ProfilesStorage,
	budgets storage.BudgetsStorage,
	meals storage.MealsStorage,
	weights storage.WeightsStorage,
	calc *nutrition.Calculator,
) *Engine {
	return &Engine{
		profiles: profiles,
		budgets:  budgets,
		meals:    meals,
		weights:  weights,
		calc:     calc,
		now:      time.Now,
	}
}

// SetClock overrides the wall clock (tests).
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) today() time.Time {
	return dates.Day(e.now())
}

// CurrentBudget возвращает active бюджет недели, содержащей today, создавая его при отсутствии.
// Повторные и параллельные вызовы в пределах недели возвращают одну и ту же строку.
func (e *Engine) CurrentBudget(ctx context.Context, userID string, today time.Time) (*storage.WeeklyBudget, error) {
	start := dates.WeekStart(today)

	budget, err := e.budgets.GetActiveBudget(ctx, userID, start)
	if err == nil {
		return budget, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to get active budget: %w", err)
	}

	profile, err := e.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	weekly, err := e.calc.WeeklyTarget(profile)
	if err != nil {
		return nil, err
	}

	budget, created, err := e.budgets.CreateActiveBudget(ctx, storage.WeeklyBudget{
		UserID:               userID,
		StartDate:            start,
		EndDate:              dates.WeekEnd(start),
		TargetCalories:       weekly.Calories,
		TargetProtein:        weekly.ProteinG,
		TargetFat:            weekly.FatG,
		TargetCarbs:          weekly.CarbsG,
		WeekendBonusCalories: weekly.WeekendBonusCalories,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create weekly budget: %w", err)
	}
	if created {
		log.Printf("INFO budgets: created weekly budget user=%s week=%s kcal=%d", userID, dates.Format(start), budget.TargetCalories)
	}

	return budget, nil
}

// DailyBreakdown: цель дня = round(недельная/7) + бонус, если день выходной.
func (e *Engine) DailyBreakdown(ctx context.Context, userID string, date time.Time) (*DailyBreakdown, error) {
	date = dates.Day(date)

	budget, err := e.CurrentBudget(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	profile, err := e.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	isWeekend := nutrition.IsWeekend(profile, date)
	bonus := 0
	if isWeekend {
		bonus = budget.WeekendBonusCalories
	}
	target := int(math.Round(float64(budget.TargetCalories)/7)) + bonus

	actual, err := e.caloriesBetween(ctx, userID, date, date)
	if err != nil {
		return nil, err
	}

	return &DailyBreakdown{
		Date:              dates.Format(date),
		TargetCalories:    target,
		ActualCalories:    actual,
		RemainingCalories: target - actual,
		IsWeekend:         isWeekend,
		WeekendBonus:      bonus,
	}, nil
}

// WeekendCompensationPlan splits the weekend bonus over the next
// CompensationDays dates after weekendDate that are not Saturday or Sunday.
// Without a bonus the plan is empty.
func (e *Engine) WeekendCompensationPlan(ctx context.Context, userID string, weekendDate time.Time) (*CompensationPlan, error) {
	weekendDate = dates.Day(weekendDate)

	budget, err := e.CurrentBudget(ctx, userID, weekendDate)
	if err != nil {
		return nil, err
	}

	plan := &CompensationPlan{CompensationDays: []CompensationDay{}}
	bonus := budget.WeekendBonusCalories
	if bonus <= 0 {
		return plan, nil
	}

	perDay := int(math.Round(float64(bonus) / CompensationDays))
	for day := weekendDate; len(plan.CompensationDays) < CompensationDays; {
		day = day.AddDate(0, 0, 1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		plan.CompensationDays = append(plan.CompensationDays, CompensationDay{
			Date:                 dates.Format(day),
			CompensationCalories: perDay,
		})
	}

	plan.WeekendBonus = bonus
	plan.TotalCompensation = bonus
	return plan, nil
}

// WeeklyProgress считает факт, дефицит и потерю веса за неделю.
// Без start берётся текущая неделя; start выравнивается на понедельник.
func (e *Engine) WeeklyProgress(ctx context.Context, userID string, start *time.Time) (*WeeklyProgress, error) {
	weekStart := dates.WeekStart(e.today())
	if start != nil {
		weekStart = dates.WeekStart(*start)
	}
	weekEnd := dates.WeekEnd(weekStart)

	budget, err := e.CurrentBudget(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	profile, err := e.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	actual, err := e.caloriesBetween(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	samples, err := e.weights.ListWeights(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}

	progress := &WeeklyProgress{
		WeekStart:      dates.Format(weekStart),
		WeekEnd:        dates.Format(weekEnd),
		TargetCalories: budget.TargetCalories,
		ActualCalories: actual,
		Deficit:        budget.TargetCalories - actual,
		TargetLoss:     profile.TargetWeeklyLossKg,
	}
	if budget.TargetCalories > 0 {
		progress.ProgressPercentage = int(math.Round(float64(actual) / float64(budget.TargetCalories) * 100))
	}

	if change := trends.WeightChange(weightPoints(samples), weekStart, weekEnd); change != nil {
		progress.WeightStart = change.StartValue
		progress.WeightEnd = change.EndValue
		progress.WeightLoss = trends.Round2(change.StartValue - change.EndValue)
	}

	return progress, nil
}

// Suggestions анализирует прогресс текущей недели.
func (e *Engine) Suggestions(ctx context.Context, userID string) (*Suggestions, error) {
	progress, err := e.WeeklyProgress(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	out := &Suggestions{
		Message:     fmt.Sprintf("Progress: %d%% of the weekly budget used", progress.ProgressPercentage),
		Suggestions: []string{},
		Adjustments: []Adjustment{},
	}

	switch {
	case progress.ProgressPercentage > 110:
		out.Suggestions = append(out.Suggestions,
			"You are more than 10% over the weekly budget",
			"Consider more activity next week",
			"Check weekend mode, the bonus may be too high",
		)
	case progress.ProgressPercentage < 90:
		out.Suggestions = append(out.Suggestions,
			"You are well below the weekly budget",
			"Make sure you eat enough calories",
			"Check whether the budget is set too low",
		)
	default:
		out.Suggestions = append(out.Suggestions, "Great, you are within the weekly budget")
	}

	if progress.WeightLoss > 0 && progress.TargetLoss > 0 {
		ratio := progress.WeightLoss / progress.TargetLoss
		switch {
		case ratio > 1.5:
			out.Suggestions = append(out.Suggestions, "Weight is dropping faster than planned")
			out.Adjustments = append(out.Adjustments, Adjustment{
				Type:   "increase_calories",
				Value:  200,
				Reason: "Increase daily calories by 200 kcal",
			})
		case ratio < 0.5:
			out.Suggestions = append(out.Suggestions, "Weight is dropping slower than planned")
			out.Adjustments = append(out.Adjustments, Adjustment{
				Type:   "decrease_calories",
				Value:  -200,
				Reason: "Decrease daily calories by 200 kcal",
			})
		}
	}

	return out, nil
}

// Status сообщает, сколько калорий осталось на оставшиеся дни недели.
func (e *Engine) Status(ctx context.Context, userID string, today time.Time) (*Status, error) {
	today = dates.Day(today)
	weekStart := dates.WeekStart(today)

	progress, err := e.WeeklyProgress(ctx, userID, &weekStart)
	if err != nil {
		return nil, err
	}

	remainingDays := dates.DaysBetween(today, dates.WeekEnd(weekStart))
	if remainingDays < 0 {
		remainingDays = 0
	}
	remaining := progress.TargetCalories - progress.ActualCalories
	avg := 0
	if remainingDays > 0 {
		avg = int(math.Round(float64(remaining) / float64(remainingDays)))
	}

	return &Status{
		IsOnTrack:              progress.ProgressPercentage <= 100,
		RemainingDays:          remainingDays,
		RemainingCalories:      remaining,
		AverageRemainingPerDay: avg,
		CanAffordWeekend:       avg >= MinAffordableDailyKcal,
	}, nil
}

// List returns the newest weeks first.
func (e *Engine) List(ctx context.Context, userID string, limit int) ([]storage.WeeklyBudget, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	budgets, err := e.budgets.ListBudgets(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

func (e *Engine) Update(ctx context.Context, userID string, id uuid.UUID, req UpdateRequest) (*storage.WeeklyBudget, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	budget, err := e.budgets.GetBudget(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrBudgetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	req.apply(budget)
	err = e.budgets.UpdateBudget(ctx, budget)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, ErrBudgetNotFound
	case errors.Is(err, storage.ErrConflict):
		return nil, ErrBudgetConflict
	case err != nil:
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}

	return budget, nil
}

// loadProfile treats a missing profile as the registration defaults,
// which the calculator then reports as incomplete.
func (e *Engine) loadProfile(ctx context.Context, userID string) (storage.UserProfile, error) {
	profile, err := e.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.NewDefaultProfile(userID), nil
	}
	if err != nil {
		return storage.UserProfile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return *profile, nil
}

func (e *Engine) caloriesBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	meals, err := e.meals.ListMeals(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to list meals: %w", err)
	}
	total := 0
	for _, m := range meals {
		total += m.TotalCalories
	}
	return total, nil
}

func weightPoints(samples []storage.WeightSample) []trends.Point {
	points := make([]trends.Point, 0, len(samples))
	for _, s := range samples {
		points = append(points, trends.Point{Date: s.Date, Value: s.ValueKg})
	}
	return points
}
