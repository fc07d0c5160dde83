package analysis

import (
	"testing"
	"time"
)

func TestHasUnitWord(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"200g chicken", true},
		{"rice 150 grams", true},
		{"2 slices of bread", true},
		{"1 cup of milk", true},
		{"owsianka 1 szklanka mleka", true},
		{"jajecznica 3 szt", true},
		{"1 łyżka masła", true},
		{"200 gramów kurczaka", true},
		{"2 łyżki ryżu", true},
		{"2 sztuki jajka", true},
		{"1 szklanki mleka", true},
		{"dwa kawałki pizzy", true},
		{"3 plastry szynki", true},
		{"grapes and gravy", false},
		{"chicken and rice", false},
		{"2 eggs", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := HasUnitWord(tt.text); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMealTypeForHour(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "breakfast"},
		{11, "breakfast"},
		{12, "lunch"},
		{15, "lunch"},
		{16, "dinner"},
		{19, "dinner"},
		{20, "snack"},
		{23, "snack"},
	}

	for _, tt := range tests {
		if got, _ := MealTypeForHour(tt.hour); got != tt.want {
			t.Fatalf("hour %d: expected %s, got %s", tt.hour, tt.want, got)
		}
	}
}

func TestEstimateKeywords(t *testing.T) {
	est := NewEstimator(func(int) int { return 0 }, fixedClock(time.Date(2026, 2, 11, 13, 0, 0, 0, time.UTC)))

	res := est.Estimate("Chicken breast with rice 200g")
	if res.Type != TypeNutritionAnalysis || res.Source != SourceFallback {
		t.Fatalf("unexpected result: %+v", res)
	}
	if err := res.Validate(); err != nil {
		t.Fatalf("fallback result must be valid: %v", err)
	}
	d := res.Data
	if d.TotalCalories != 295 || d.TotalProtein != 33.7 || d.TotalCarbs != 28 || d.TotalFat != 3.9 {
		t.Fatalf("unexpected totals: %+v", d)
	}
	if len(d.Meals) != 1 || d.Meals[0].MealType != "lunch" || d.Confidence != "medium" {
		t.Fatalf("unexpected meal: %+v", d.Meals)
	}
}

func TestEstimateRandomRange(t *testing.T) {
	est := NewEstimator(func(n int) int { return n - 1 }, fixedClock(time.Date(2026, 2, 11, 21, 0, 0, 0, time.UTC)))

	res := est.Estimate("pierogi 300g")
	d := res.Data
	if d.TotalCalories != 499 || d.TotalProtein != 29 || d.TotalCarbs != 49 || d.TotalFat != 14 {
		t.Fatalf("expected upper bounds of the random ranges, got %+v", d)
	}
	if d.Meals[0].MealType != "snack" {
		t.Fatalf("expected snack at 21:00, got %s", d.Meals[0].MealType)
	}

	low := NewEstimator(func(int) int { return 0 }, nil).Estimate("pierogi 300g").Data
	if low.TotalCalories != 200 || low.TotalProtein != 10 || low.TotalCarbs != 20 || low.TotalFat != 5 {
		t.Fatalf("expected lower bounds of the random ranges, got %+v", low)
	}
}

func TestEstimateClarification(t *testing.T) {
	res := NewEstimator(nil, nil).Estimate("chicken and rice")
	if res.Type != TypeClarificationNeeded {
		t.Fatalf("expected clarification, got %s", res.Type)
	}
	if res.Question == "" || len(res.Suggestions) != 4 {
		t.Fatalf("unexpected clarification: %+v", res)
	}
	if err := res.Validate(); err != nil {
		t.Fatalf("clarification must be valid: %v", err)
	}
}
