package activities

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fdg312/cut-sprint/internal/budgets"
	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/fdg312/cut-sprint/internal/nutrition"
	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/fdg312/cut-sprint/internal/storage/memory"
	"github.com/google/uuid"
)

const testUser = "user-1"

func feb(day int) time.Time {
	return time.Date(2026, 2, day, 0, 0, 0, 0, time.UTC)
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

// setupTestService: эталонный профиль 70 кг (2006 ккал/день), часы на среде 2026-02-11.
func setupTestService(t *testing.T) (*Service, *memory.MemoryStorage) {
	t.Helper()
	now := func() time.Time { return time.Date(2026, 2, 11, 15, 30, 0, 0, time.UTC) }

	store := memory.New()
	profile := storage.NewDefaultProfile(testUser)
	profile.WeightKg = floatPtr(70)
	profile.HeightCm = floatPtr(175)
	profile.Age = intPtr(30)
	profile.Gender = strPtr(storage.GenderMale)
	if err := store.UpsertProfile(context.Background(), &profile); err != nil {
		t.Fatalf("failed to store profile: %v", err)
	}

	engine := budgets.NewEngine(
		store,
		store.GetBudgetsStorage(),
		store.GetMealsStorage(),
		store.GetWeightsStorage(),
		nutrition.NewCalculator(config.DefaultNutritionConfig()),
	)
	engine.SetClock(now)

	svc := NewService(store.GetActivitiesStorage(), store.GetWeightsStorage(), store, engine)
	svc.SetClock(now)
	return svc, store
}

func addMeal(t *testing.T, store *memory.MemoryStorage, day time.Time, kcal int) {
	t.Helper()
	meal := &storage.Meal{UserID: testUser, Date: day, MealType: storage.MealTypeLunch, TotalCalories: kcal}
	if err := store.GetMealsStorage().CreateMeal(context.Background(), meal); err != nil {
		t.Fatalf("failed to add meal: %v", err)
	}
}

func mustCreate(t *testing.T, svc *Service, req CreateActivityRequest) *ActivityDTO {
	t.Helper()
	dto, err := svc.Create(context.Background(), testUser, req)
	if err != nil {
		t.Fatalf("failed to create activity: %v", err)
	}
	return dto
}

func TestCaloriesBurned(t *testing.T) {
	tests := []struct {
		activityType string
		minutes      int
		weight       float64
		want         int
	}{
		{storage.ActivityTypeRunning, 30, 70, 345},
		{storage.ActivityTypeCycling, 45, 70, 360},
		{storage.ActivityTypeStrength, 25, 70, 150},
		{storage.ActivityTypeFlexibility, 20, 70, 50},
		{storage.ActivityTypeSwimming, 30, 70, 270},
		{storage.ActivityTypeWalking, 60, 70, 240},
		{storage.ActivityTypeRunning, 30, 80, 394},
		{storage.ActivityTypeMixed, 30, 56, 180},
	}

	for _, tt := range tests {
		got := CaloriesBurned(tt.activityType, tt.minutes, tt.weight)
		if got != tt.want {
			t.Errorf("%s %dmin at %vkg: expected %d, got %d", tt.activityType, tt.minutes, tt.weight, tt.want, got)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setupTestService(t)

	tests := []struct {
		name string
		req  CreateActivityRequest
	}{
		{"unknown type", CreateActivityRequest{Type: "yoga", DurationMinutes: 30}},
		{"zero duration", CreateActivityRequest{Type: "running"}},
		{"too long", CreateActivityRequest{Type: "running", DurationMinutes: 481}},
		{"negative calories", CreateActivityRequest{Type: "running", DurationMinutes: 30, EstimatedCalories: intPtr(-5)}},
		{"too many calories", CreateActivityRequest{Type: "running", DurationMinutes: 30, EstimatedCalories: intPtr(2001)}},
		{"bad date", CreateActivityRequest{Type: "running", DurationMinutes: 30, Date: "11.02.2026"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), testUser, tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestCreateEstimatesCalories(t *testing.T) {
	svc, store := setupTestService(t)

	dto := mustCreate(t, svc, CreateActivityRequest{Type: "running", DurationMinutes: 30, Notes: "  park  "})
	if dto.EstimatedCalories != 345 {
		t.Fatalf("expected 345 kcal from profile weight, got %d", dto.EstimatedCalories)
	}
	if dto.Date != "2026-02-11" {
		t.Fatalf("expected today's date, got %s", dto.Date)
	}
	if dto.Notes != "park" {
		t.Fatalf("expected trimmed notes, got %q", dto.Notes)
	}

	// последнее взвешивание важнее профиля
	sample := &storage.WeightSample{UserID: testUser, Date: feb(10), ValueKg: 80, Source: storage.WeightSourceManual}
	if err := store.GetWeightsStorage().AddWeight(context.Background(), sample); err != nil {
		t.Fatalf("failed to add weight: %v", err)
	}
	dto = mustCreate(t, svc, CreateActivityRequest{Type: "running", DurationMinutes: 30})
	if dto.EstimatedCalories != 394 {
		t.Fatalf("expected 394 kcal from latest weigh-in, got %d", dto.EstimatedCalories)
	}
}

func TestCreateKeepsExplicitCalories(t *testing.T) {
	svc, _ := setupTestService(t)

	dto := mustCreate(t, svc, CreateActivityRequest{Type: "strength", DurationMinutes: 40, EstimatedCalories: intPtr(0)})
	if dto.EstimatedCalories != 0 {
		t.Fatalf("expected explicit 0 kcal, got %d", dto.EstimatedCalories)
	}
	dto = mustCreate(t, svc, CreateActivityRequest{Type: "strength", DurationMinutes: 40, EstimatedCalories: intPtr(310)})
	if dto.EstimatedCalories != 310 {
		t.Fatalf("expected explicit 310 kcal, got %d", dto.EstimatedCalories)
	}
}

func TestUserWeightFallsBackToReference(t *testing.T) {
	svc, _ := setupTestService(t)

	dto, err := svc.Create(context.Background(), "stranger", CreateActivityRequest{Type: "walking", DurationMinutes: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.EstimatedCalories != 120 {
		t.Fatalf("expected 120 kcal at 70 kg, got %d", dto.EstimatedCalories)
	}
}

func TestUpdate(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, CreateActivityRequest{Type: "running", DurationMinutes: 30})

	updated, err := svc.Update(ctx, testUser, created.ID, UpdateActivityRequest{DurationMinutes: intPtr(20)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.EstimatedCalories != 230 {
		t.Fatalf("expected recalculated 230 kcal, got %d", updated.EstimatedCalories)
	}

	updated, err = svc.Update(ctx, testUser, created.ID, UpdateActivityRequest{
		Type:              strPtr("cycling"),
		EstimatedCalories: intPtr(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Type != "cycling" || updated.EstimatedCalories != 100 {
		t.Fatalf("expected cycling with explicit 100 kcal, got %s %d", updated.Type, updated.EstimatedCalories)
	}

	// только заметка: калории не трогаем
	updated, err = svc.Update(ctx, testUser, created.ID, UpdateActivityRequest{Notes: strPtr("legs")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.EstimatedCalories != 100 || updated.Notes != "legs" {
		t.Fatalf("expected 100 kcal and notes, got %d %q", updated.EstimatedCalories, updated.Notes)
	}

	if _, err := svc.Update(ctx, testUser, created.ID, UpdateActivityRequest{Date: strPtr("2026/02/10")}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.Update(ctx, "user-2", created.ID, UpdateActivityRequest{Notes: strPtr("x")}); !errors.Is(err, ErrActivityNotFound) {
		t.Fatalf("expected ErrActivityNotFound for another user, got %v", err)
	}
}

func TestGetAndDelete(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, CreateActivityRequest{Type: "swimming", DurationMinutes: 30})

	if _, err := svc.Get(ctx, "user-2", created.ID); !errors.Is(err, ErrActivityNotFound) {
		t.Fatalf("expected ErrActivityNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "user-2", created.ID); !errors.Is(err, ErrActivityNotFound) {
		t.Fatalf("expected ErrActivityNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, testUser, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(ctx, testUser, created.ID); !errors.Is(err, ErrActivityNotFound) {
		t.Fatalf("expected ErrActivityNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, testUser, uuid.New()); !errors.Is(err, ErrActivityNotFound) {
		t.Fatalf("expected ErrActivityNotFound, got %v", err)
	}
}

func TestListFiltersAndTotals(t *testing.T) {
	svc, _ := setupTestService(t)
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-09", Type: "running", DurationMinutes: 30})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-10", Type: "cycling", DurationMinutes: 45})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-11", Type: "running", DurationMinutes: 20})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-01-20", Type: "running", DurationMinutes: 20})

	resp, err := svc.List(context.Background(), testUser, feb(9), feb(11), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(resp.Activities))
	}
	if resp.Activities[0].Date != "2026-02-11" {
		t.Fatalf("expected newest first, got %s", resp.Activities[0].Date)
	}
	if resp.TotalCalories != 345+360+230 {
		t.Fatalf("expected 935 kcal, got %d", resp.TotalCalories)
	}

	resp, err = svc.List(context.Background(), testUser, feb(9), feb(11), "running")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Activities) != 2 || resp.TotalCalories != 575 {
		t.Fatalf("expected 2 runs with 575 kcal, got %d with %d", len(resp.Activities), resp.TotalCalories)
	}

	if _, err := svc.List(context.Background(), testUser, feb(11), feb(9), ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for inverted range, got %v", err)
	}
	if _, err := svc.List(context.Background(), testUser, feb(9), feb(11), "yoga"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown type, got %v", err)
	}
}

func TestDailyAndWeeklyBurned(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-08", Type: "running", DurationMinutes: 30}) // прошлая неделя
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-09", Type: "cycling", DurationMinutes: 45})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-11", Type: "running", DurationMinutes: 20})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-11", Type: "flexibility", DurationMinutes: 20})

	daily, err := svc.DailyBurned(ctx, testUser, feb(11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if daily.Calories != 280 || daily.ActivityCount != 2 {
		t.Fatalf("expected 280 kcal over 2 activities, got %d over %d", daily.Calories, daily.ActivityCount)
	}

	weekly, err := svc.WeeklyBurned(ctx, testUser, feb(11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weekly.From != "2026-02-09" || weekly.To != "2026-02-15" {
		t.Fatalf("expected Monday-aligned week, got %s..%s", weekly.From, weekly.To)
	}
	if weekly.Calories != 640 || weekly.ActivityCount != 3 {
		t.Fatalf("expected 640 kcal over 3 activities, got %d over %d", weekly.Calories, weekly.ActivityCount)
	}
	if len(weekly.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(weekly.Days))
	}
	if weekly.Days[0].Calories != 360 || weekly.Days[1].Calories != 0 || weekly.Days[2].Calories != 280 {
		t.Fatalf("unexpected per-day split: %+v", weekly.Days)
	}
}

func TestStats(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	empty, err := svc.Stats(ctx, testUser, feb(1), feb(11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.TotalActivities != 0 || empty.MostFrequentType != "" {
		t.Fatalf("expected empty stats, got %+v", empty)
	}

	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-09", Type: "running", DurationMinutes: 30})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-10", Type: "cycling", DurationMinutes: 45})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-11", Type: "running", DurationMinutes: 20})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-11", Type: "strength", DurationMinutes: 40})

	stats, err := svc.Stats(ctx, testUser, feb(1), feb(11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalActivities != 4 || stats.TotalDuration != 135 {
		t.Fatalf("expected 4 activities and 135 min, got %d and %d", stats.TotalActivities, stats.TotalDuration)
	}
	if stats.TotalCalories != 345+360+230+240 {
		t.Fatalf("expected 1175 kcal, got %d", stats.TotalCalories)
	}
	if stats.AverageDuration != 34 {
		t.Fatalf("expected average 34 min, got %d", stats.AverageDuration)
	}
	if stats.MostFrequentType != "running" {
		t.Fatalf("expected running, got %s", stats.MostFrequentType)
	}
	if got := stats.TypeBreakdown["running"]; got.Count != 2 || got.TotalDuration != 50 || got.TotalCalories != 575 {
		t.Fatalf("unexpected running breakdown: %+v", got)
	}
}

func TestStatsTieGoesToFirstTypeAlphabetically(t *testing.T) {
	svc, _ := setupTestService(t)
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-10", Type: "walking", DurationMinutes: 30})
	mustCreate(t, svc, CreateActivityRequest{Date: "2026-02-11", Type: "cycling", DurationMinutes: 30})

	stats, err := svc.Stats(context.Background(), testUser, feb(1), feb(11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.MostFrequentType != "cycling" {
		t.Fatalf("expected cycling, got %s", stats.MostFrequentType)
	}
}

func TestCalculate(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	resp, err := svc.Calculate(ctx, testUser, CalculateRequest{Type: "cycling", DurationMinutes: 30, UserWeightKg: 84})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Calories != 288 {
		t.Fatalf("expected 288 kcal, got %d", resp.Calories)
	}

	resp, err = svc.Calculate(ctx, testUser, CalculateRequest{Type: "cycling", DurationMinutes: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UserWeightKg != 70 || resp.Calories != 240 {
		t.Fatalf("expected profile weight 70 and 240 kcal, got %v and %d", resp.UserWeightKg, resp.Calories)
	}

	if _, err := svc.Calculate(ctx, testUser, CalculateRequest{Type: "cycling", DurationMinutes: 30, UserWeightKg: 20}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestPresets(t *testing.T) {
	svc, _ := setupTestService(t)

	resp, err := svc.Presets(context.Background(), testUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]int{"running": 230, "cycling": 240, "strength": 150, "flexibility": 50, "mixed": 225, "walking": 180}
	if len(resp.Presets) != len(want) {
		t.Fatalf("expected %d presets, got %d", len(want), len(resp.Presets))
	}
	for _, p := range resp.Presets {
		if want[p.Type] != p.Calories {
			t.Errorf("%s: expected %d kcal, got %d", p.Type, want[p.Type], p.Calories)
		}
	}
}

func TestSuggestions(t *testing.T) {
	tests := []struct {
		name        string
		eaten       int
		run         int
		wantExcess  int
		wantTypes   []string
		wantMinutes []int
	}{
		{"large excess", 2500, 0, 494, []string{"running", "cycling"}, []int{43, 62}},
		{"small excess", 2200, 0, 194, []string{"walking"}, []int{49}},
		{"covered by logged run", 2200, 20, 0, nil, nil},
		{"huge excess is capped", 4000, 0, 1994, []string{"running", "cycling"}, []int{60, 90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := setupTestService(t)
			addMeal(t, store, feb(11), tt.eaten)
			if tt.run > 0 {
				mustCreate(t, svc, CreateActivityRequest{Type: "running", DurationMinutes: tt.run})
			}

			resp, err := svc.Suggestions(context.Background(), testUser, feb(11))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.TargetCalories != 2006 {
				t.Fatalf("expected target 2006, got %d", resp.TargetCalories)
			}
			if resp.ExcessCalories != tt.wantExcess {
				t.Fatalf("expected excess %d, got %d", tt.wantExcess, resp.ExcessCalories)
			}
			if len(resp.Suggestions) != len(tt.wantTypes) {
				t.Fatalf("expected %d suggestions, got %+v", len(tt.wantTypes), resp.Suggestions)
			}
			for i, s := range resp.Suggestions {
				if s.Type != tt.wantTypes[i] || s.DurationMinutes != tt.wantMinutes[i] {
					t.Errorf("suggestion %d: expected %s %dmin, got %s %dmin", i, tt.wantTypes[i], tt.wantMinutes[i], s.Type, s.DurationMinutes)
				}
			}
		})
	}
}

func TestSuggestionsNetIncludesBurn(t *testing.T) {
	svc, store := setupTestService(t)
	addMeal(t, store, feb(11), 2500)
	mustCreate(t, svc, CreateActivityRequest{Type: "cycling", DurationMinutes: 30})

	resp, err := svc.Suggestions(context.Background(), testUser, feb(11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.BurnedCalories != 240 || resp.NetCalories != 2260 {
		t.Fatalf("expected burned 240 and net 2260, got %d and %d", resp.BurnedCalories, resp.NetCalories)
	}
	// 254 ккал: ниже порога, хватит прогулки
	if len(resp.Suggestions) != 1 || resp.Suggestions[0].Type != "walking" || resp.Suggestions[0].DurationMinutes != 64 {
		t.Fatalf("expected a 64 min walk, got %+v", resp.Suggestions)
	}
}

func TestSuggestionsIncompleteProfile(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Suggestions(context.Background(), "no-profile", feb(11))
	var incomplete *nutrition.IncompleteProfileError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteProfileError, got %v", err)
	}
}
