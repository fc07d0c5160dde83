package meals

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/fdg312/cut-sprint/internal/trends"
	"github.com/google/uuid"
)

var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrMealNotFound    = errors.New("meal not found")
	ErrProductNotFound = errors.New("product not found")
)

const (
	DefaultTrendDays = 30
	MinTrendDays     = 7
	MaxTrendDays     = 90

	// Пороги для выводов по средним значениям за окно.
	highCalories = 2000
	lowCalories  = 1200
	highProtein  = 120
	lowProtein   = 60

	// Пороги остатка на день для подсказок.
	minRemainingProteinG = 20
	minRemainingCarbsG   = 30
	minRemainingFatG     = 10

	suggestedProducts = 3
	catalogScanLimit  = 200
)

// Service ведёт дневник питания и строит сводки
type Service struct {
	meals    storage.MealsStorage
	products storage.ProductsStorage
	profiles storage.ProfilesStorage
	calc     *nutrition.Calculator
	now      func() time.Time
}

func NewService(meals storage.MealsStorage, products storage.ProductsStorage, profiles storage.ProfilesStorage, calc *nutrition.Calculator) *Service {
	return &Service{
		meals:    meals,
		products: products,
		profiles: profiles,
		calc:     calc,
		now:      time.Now,
	}
}

// SetClock overrides the wall clock (tests).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) today() time.Time {
	return dates.Day(s.now())
}

// Create logs a meal. Items are resolved against the product catalog and summed.
func (s *Service) Create(ctx context.Context, userID string, req CreateMealRequest) (*MealDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	date, err := dates.ParseOr(req.Date, s.today())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	meal := &storage.Meal{
		UserID:        userID,
		Date:          date,
		MealType:      req.MealType,
		Description:   strings.TrimSpace(req.Description),
		TotalCalories: req.Calories,
		TotalProtein:  req.ProteinG,
		TotalFat:      req.FatG,
		TotalCarbs:    req.CarbsG,
	}

	if len(req.Items) > 0 {
		totals, err := s.itemTotals(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		meal.TotalCalories = totals.Calories
		meal.TotalProtein = totals.ProteinG
		meal.TotalFat = totals.FatG
		meal.TotalCarbs = totals.CarbsG
	}

	if err := s.meals.CreateMeal(ctx, meal); err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}

	dto := mealToDTO(*meal)
	return &dto, nil
}

func (s *Service) itemTotals(ctx context.Context, items []MealItemRequest) (Totals, error) {
	var totals Totals
	for _, item := range items {
		product, err := s.products.GetProduct(ctx, item.ProductID)
		if errors.Is(err, storage.ErrNotFound) {
			return Totals{}, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		if err != nil {
			return Totals{}, fmt.Errorf("failed to get product: %w", err)
		}

		scaled := nutrition.ScaleNutrition(*product, item.Grams)
		totals.add(storage.Meal{
			TotalCalories: scaled.Calories,
			TotalProtein:  scaled.ProteinG,
			TotalFat:      scaled.FatG,
			TotalCarbs:    scaled.CarbsG,
		})
	}
	return totals, nil
}

// List returns the meals of one day with their totals.
func (s *Service) List(ctx context.Context, userID string, date time.Time) (*MealsResponse, error) {
	rows, err := s.meals.ListMeals(ctx, userID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	resp := &MealsResponse{Date: dates.Format(date), Meals: make([]MealDTO, 0, len(rows))}
	for _, m := range rows {
		resp.Meals = append(resp.Meals, mealToDTO(m))
		resp.Totals.add(m)
	}
	return resp, nil
}

// DuplicateYesterday copies every meal logged the day before target onto target.
func (s *Service) DuplicateYesterday(ctx context.Context, userID string, target time.Time) (*MealsResponse, error) {
	yesterday := target.AddDate(0, 0, -1)
	rows, err := s.meals.ListMeals(ctx, userID, yesterday, yesterday)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	resp := &MealsResponse{Date: dates.Format(target), Meals: make([]MealDTO, 0, len(rows))}
	for _, m := range rows {
		copied := m
		copied.ID = uuid.Nil
		copied.Date = target
		if err := s.meals.CreateMeal(ctx, &copied); err != nil {
			return nil, fmt.Errorf("failed to copy meal %s: %w", m.ID, err)
		}
		resp.Meals = append(resp.Meals, mealToDTO(copied))
		resp.Totals.add(copied)
	}
	log.Printf("INFO meals: copied %d meals from %s to %s for %s", len(rows), dates.Format(yesterday), dates.Format(target), userID)
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	err := s.meals.DeleteMeal(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrMealNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	return nil
}

func (s *Service) DailySummary(ctx context.Context, userID string, date time.Time) (*DailySummary, error) {
	rows, err := s.meals.ListMeals(ctx, userID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	summary := &DailySummary{Date: dates.Format(date), MealCount: len(rows)}
	for _, m := range rows {
		summary.Totals.add(m)
	}
	return summary, nil
}

// WeeklySummary sums the Monday..Sunday week containing start.
func (s *Service) WeeklySummary(ctx context.Context, userID string, start time.Time) (*WeeklySummary, error) {
	weekStart := dates.WeekStart(start)
	weekEnd := dates.WeekEnd(start)

	rows, err := s.meals.ListMeals(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	byDate := groupByDate(rows)
	summary := &WeeklySummary{
		StartDate: dates.Format(weekStart),
		EndDate:   dates.Format(weekEnd),
		Days:      make([]DailySummary, 0, 7),
	}
	for d := weekStart; !d.After(weekEnd); d = d.AddDate(0, 0, 1) {
		day := DailySummary{Date: dates.Format(d)}
		for _, m := range byDate[day.Date] {
			day.MealCount++
			day.Totals.add(m)
			summary.Totals.add(m)
		}
		summary.Days = append(summary.Days, day)
	}
	summary.AverageCalories = int(math.Round(float64(summary.Totals.Calories) / 7))

	return summary, nil
}

// Trends summarizes logged days of the last days and classifies each macro series.
// Days without meals are skipped, so averages cover logged days only.
func (s *Service) Trends(ctx context.Context, userID string, days int) (*TrendsResponse, error) {
	if days == 0 {
		days = DefaultTrendDays
	}
	if days < MinTrendDays || days > MaxTrendDays {
		return nil, fmt.Errorf("%w: days must be between %d and %d", ErrInvalidRequest, MinTrendDays, MaxTrendDays)
	}

	to := s.today()
	from := to.AddDate(0, 0, -days)
	rows, err := s.meals.ListMeals(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	byDate := groupByDate(rows)
	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	resp := &TrendsResponse{
		Days:            days,
		Summaries:       make([]DailySummary, 0, len(keys)),
		Insights:        []Insight{},
		Recommendations: []string{},
	}

	var calories, protein, fat, carbs []float64
	for _, k := range keys {
		day := DailySummary{Date: k}
		for _, m := range byDate[k] {
			day.MealCount++
			day.Totals.add(m)
		}
		resp.Summaries = append(resp.Summaries, day)
		calories = append(calories, float64(day.Totals.Calories))
		protein = append(protein, day.Totals.ProteinG)
		fat = append(fat, day.Totals.FatG)
		carbs = append(carbs, day.Totals.CarbsG)
	}

	threshold := trends.RelativeThreshold(trends.NutritionTrendRatio)
	resp.CaloriesTrend = trends.ClassifyTrend(calories, threshold)
	resp.ProteinTrend = trends.ClassifyTrend(protein, threshold)
	resp.FatTrend = trends.ClassifyTrend(fat, threshold)
	resp.CarbsTrend = trends.ClassifyTrend(carbs, threshold)

	if len(keys) == 0 {
		return resp, nil
	}

	avgCalories := average(calories)
	avgProtein := average(protein)
	resp.Insights = append(resp.Insights,
		Insight{Type: "calories", Value: trends.Round2(avgCalories), Status: classify(avgCalories, lowCalories, highCalories)},
		Insight{Type: "protein", Value: trends.Round2(avgProtein), Status: classify(avgProtein, lowProtein, highProtein)},
	)
	if avgCalories < lowCalories {
		resp.Recommendations = append(resp.Recommendations, "Consider increasing your daily calorie intake")
	}
	if avgProtein < lowProtein {
		resp.Recommendations = append(resp.Recommendations, "Increase protein intake: add more meat, fish or legumes")
	}

	return resp, nil
}

// Suggestions compares the day's intake with the daily target and names the missing macro.
// Protein is checked first, then carbs, then fat.
func (s *Service) Suggestions(ctx context.Context, userID string, date time.Time) (*SuggestionsResponse, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		empty := storage.NewDefaultProfile(userID)
		profile = &empty
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	target, err := s.calc.DailyTarget(*profile)
	if err != nil {
		return nil, err
	}

	summary, err := s.DailySummary(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	remaining := Totals{
		Calories: target.Calories - summary.Totals.Calories,
		ProteinG: trends.Round2(float64(target.ProteinG) - summary.Totals.ProteinG),
		FatG:     trends.Round2(float64(target.FatG) - summary.Totals.FatG),
		CarbsG:   trends.Round2(float64(target.CarbsG) - summary.Totals.CarbsG),
	}

	resp := &SuggestionsResponse{
		Date:      dates.Format(date),
		Target:    target,
		Consumed:  summary.Totals,
		Remaining: remaining,
		Products:  []ProductHint{},
	}

	switch {
	case remaining.ProteinG < minRemainingProteinG:
		resp.Focus = FocusProtein
		resp.Message = "Protein is running short: add cottage cheese, chicken or yogurt"
	case remaining.CarbsG < minRemainingCarbsG:
		resp.Focus = FocusCarbs
		resp.Message = "Low on carbs before training: add a banana, rice or oatmeal"
	case remaining.FatG < minRemainingFatG:
		resp.Focus = FocusFat
		resp.Message = "Fats are running short: add nuts, olive oil or avocado"
	default:
		resp.Focus = FocusNone
		resp.Message = "Today's diet looks good"
		return resp, nil
	}

	hints, err := s.productHints(ctx, resp.Focus)
	if err != nil {
		log.Printf("WARN meals: product hints unavailable: %v", err)
		return resp, nil
	}
	resp.Products = hints
	return resp, nil
}

// productHints returns the catalog products richest in the focus macro.
func (s *Service) productHints(ctx context.Context, focus string) ([]ProductHint, error) {
	products, err := s.products.SearchProducts(ctx, "", catalogScanLimit)
	if err != nil {
		return nil, err
	}

	macro := func(p storage.Product) float64 {
		switch focus {
		case FocusProtein:
			return p.ProteinPer100g
		case FocusCarbs:
			return p.CarbsPer100g
		default:
			return p.FatPer100g
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		return macro(products[i]) > macro(products[j])
	})

	hints := []ProductHint{}
	for _, p := range products {
		if len(hints) == suggestedProducts || macro(p) <= 0 {
			break
		}
		hints = append(hints, ProductHint{ID: p.ID, Name: p.Name, Per100g: macro(p)})
	}
	return hints, nil
}

func groupByDate(rows []storage.Meal) map[string][]storage.Meal {
	byDate := make(map[string][]storage.Meal)
	for _, m := range rows {
		key := dates.Format(m.Date)
		byDate[key] = append(byDate[key], m)
	}
	return byDate
}

func classify(v, low, high float64) string {
	switch {
	case v > high:
		return InsightHigh
	case v < low:
		return InsightLow
	default:
		return InsightNormal
	}
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
