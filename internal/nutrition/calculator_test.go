package nutrition

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/fdg312/cut-sprint/internal/storage"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

func referenceProfile() storage.UserProfile {
	p := storage.NewDefaultProfile("user-1")
	p.WeightKg = floatPtr(70)
	p.HeightCm = floatPtr(175)
	p.Age = intPtr(30)
	p.Gender = strPtr(storage.GenderMale)
	p.ActivityLevel = storage.ActivityModerate
	p.TargetWeeklyLossKg = 0.5
	return p
}

func TestDailyTargetReferenceProfile(t *testing.T) {
	calc := NewCalculator(config.DefaultNutritionConfig())
	p := referenceProfile()

	bmr, err := calc.BMR(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10*70 + 6.25*175 - 5*30 + 5
	if bmr != 1648.75 {
		t.Fatalf("expected BMR 1648.75, got %v", bmr)
	}

	tdee, _ := calc.TDEE(p)
	if math.Abs(tdee-2555.5625) > 1e-6 {
		t.Fatalf("expected TDEE 2555.5625, got %v", tdee)
	}

	target, err := calc.DailyTarget(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Calories != 2006 {
		t.Fatalf("expected 2006 kcal, got %d", target.Calories)
	}
	if target.ProteinG != 154 {
		t.Fatalf("expected 154 g protein, got %d", target.ProteinG)
	}
	if target.FatG != 56 {
		t.Fatalf("expected 56 g fat, got %d", target.FatG)
	}
	if target.CarbsG != 222 {
		t.Fatalf("expected 222 g carbs, got %d", target.CarbsG)
	}
}

func TestDailyTargetWithoutLossEqualsTDEE(t *testing.T) {
	calc := NewCalculator(config.DefaultNutritionConfig())

	for _, gender := range []string{storage.GenderMale, storage.GenderFemale, storage.GenderOther} {
		for level := range activityMultipliers {
			p := referenceProfile()
			p.Gender = strPtr(gender)
			p.ActivityLevel = level
			p.TargetWeeklyLossKg = 0

			tdee, err := calc.TDEE(p)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			target, err := calc.DailyTarget(p)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if target.Calories != int(math.Round(tdee)) {
				t.Fatalf("%s/%s: expected calories == round(TDEE)=%v, got %d", gender, level, math.Round(tdee), target.Calories)
			}
		}
	}
}

func TestTDEEIncreasesWithActivity(t *testing.T) {
	calc := NewCalculator(config.DefaultNutritionConfig())
	levels := []string{
		storage.ActivitySedentary,
		storage.ActivityLight,
		storage.ActivityModerate,
		storage.ActivityActive,
		storage.ActivityVeryActive,
	}

	prev := 0.0
	for _, level := range levels {
		p := referenceProfile()
		p.ActivityLevel = level
		tdee, err := calc.TDEE(p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tdee <= prev {
			t.Fatalf("expected TDEE for %s (%v) to exceed %v", level, tdee, prev)
		}
		prev = tdee
	}
}

func TestOtherGenderUsesConfiguredConstant(t *testing.T) {
	p := referenceProfile()
	p.Gender = strPtr(storage.GenderOther)

	calc := NewCalculator(config.DefaultNutritionConfig())
	bmr, _ := calc.BMR(p)
	if bmr != 1643.75-161 {
		t.Fatalf("expected female constant by default, got %v", bmr)
	}

	cfg := config.DefaultNutritionConfig()
	cfg.OtherGenderConstant = -78
	calc = NewCalculator(cfg)
	bmr, _ = calc.BMR(p)
	if bmr != 1643.75-78 {
		t.Fatalf("expected configured constant, got %v", bmr)
	}
}

func TestProteinMultiplierIsConfigurable(t *testing.T) {
	cfg := config.DefaultNutritionConfig()
	cfg.ProteinGPerKg = 2.0
	calc := NewCalculator(cfg)

	target, err := calc.DailyTarget(referenceProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.ProteinG != 140 {
		t.Fatalf("expected 140 g protein at 2.0 g/kg, got %d", target.ProteinG)
	}
}

func TestMinCaloriesFloorOnlyWhenConfigured(t *testing.T) {
	p := referenceProfile()
	p.TargetWeeklyLossKg = 2 // 2200 kcal/day deficit

	calc := NewCalculator(config.DefaultNutritionConfig())
	target, _ := calc.DailyTarget(p)
	if target.Calories != 356 {
		t.Fatalf("expected unclamped 356 kcal, got %d", target.Calories)
	}

	cfg := config.DefaultNutritionConfig()
	cfg.MinCalories = 1200
	target, _ = NewCalculator(cfg).DailyTarget(p)
	if target.Calories != 1200 {
		t.Fatalf("expected floor of 1200 kcal, got %d", target.Calories)
	}
}

func TestIncompleteProfile(t *testing.T) {
	calc := NewCalculator(config.DefaultNutritionConfig())
	p := storage.NewDefaultProfile("user-1")
	p.WeightKg = floatPtr(80)

	_, err := calc.DailyTarget(p)
	if !errors.Is(err, ErrIncompleteProfile) {
		t.Fatalf("expected ErrIncompleteProfile, got %v", err)
	}

	var incomplete *IncompleteProfileError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected *IncompleteProfileError, got %T", err)
	}
	want := []string{"height_cm", "age", "gender"}
	if len(incomplete.Missing) != len(want) {
		t.Fatalf("expected missing %v, got %v", want, incomplete.Missing)
	}
	for i := range want {
		if incomplete.Missing[i] != want[i] {
			t.Fatalf("expected missing %v, got %v", want, incomplete.Missing)
		}
	}
}

func TestWeeklyTarget(t *testing.T) {
	calc := NewCalculator(config.DefaultNutritionConfig())

	got := calc.WeeklyFromDaily(DailyTarget{Calories: 2000, ProteinG: 150, FatG: 55, CarbsG: 200}, 800)
	if got.Calories != 15600 {
		t.Fatalf("expected 14000 + 800*2 = 15600, got %d", got.Calories)
	}
	if got.ProteinG != 1050 || got.FatG != 385 || got.CarbsG != 1400 {
		t.Fatalf("unexpected weekly macros: %+v", got)
	}

	p := referenceProfile()
	weekly, _ := calc.WeeklyTarget(p)
	if weekly.Calories != 2006*7 || weekly.WeekendBonusCalories != 0 {
		t.Fatalf("expected no bonus with inactive weekend, got %+v", weekly)
	}

	p.WeekendMode = storage.WeekendModeActive
	weekly, _ = calc.WeeklyTarget(p)
	if weekly.Calories != 2006*7+1600 || weekly.WeekendBonusCalories != 800 {
		t.Fatalf("expected bonus with active weekend, got %+v", weekly)
	}
}

func TestIsWeekend(t *testing.T) {
	p := storage.NewDefaultProfile("user-1")
	p.WeekendMode = storage.WeekendModeActive
	p.WeekendStartDay = 5
	p.WeekendEndDay = 0

	// 2026-02-09 is a Monday.
	monday := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	expected := map[int]bool{0: false, 1: false, 2: false, 3: false, 4: true, 5: true, 6: true}
	for offset, want := range expected {
		day := monday.AddDate(0, 0, offset)
		if got := IsWeekend(p, day); got != want {
			t.Fatalf("%s: expected %t, got %t", day.Weekday(), want, got)
		}
	}

	p.WeekendStartDay = 6
	p.WeekendEndDay = 6
	if !IsWeekend(p, monday.AddDate(0, 0, 5)) || IsWeekend(p, monday.AddDate(0, 0, 6)) {
		t.Fatal("expected only Saturday in a 6..6 range")
	}

	p.WeekendMode = storage.WeekendModeInactive
	if IsWeekend(p, monday.AddDate(0, 0, 5)) {
		t.Fatal("expected no weekend when mode is inactive")
	}
}

func TestScaleNutrition(t *testing.T) {
	product := storage.Product{
		Name:            "Oats",
		CaloriesPer100g: 389,
		ProteinPer100g:  16.9,
		FatPer100g:      6.9,
		CarbsPer100g:    66.2,
		FiberPer100g:    10.6,
		SodiumPer100g:   2,
	}

	identity := ScaleNutrition(product, 100)
	if identity.Calories != 389 || identity.ProteinG != 16.9 || identity.FatG != 6.9 ||
		identity.CarbsG != 66.2 || identity.FiberG != 10.6 || identity.SodiumMg != 2 {
		t.Fatalf("expected scaling by 100 g to be identity, got %+v", identity)
	}

	half := ScaleNutrition(product, 50)
	if half.Calories != 195 {
		t.Fatalf("expected 195 kcal for 50 g, got %d", half.Calories)
	}
	if half.CarbsG != 33.1 {
		t.Fatalf("expected 33.1 g carbs (2-decimal rounding), got %v", half.CarbsG)
	}
}
