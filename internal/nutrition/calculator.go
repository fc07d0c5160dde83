package nutrition

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fdg312/cut-sprint/internal/config"
	"github.com/fdg312/cut-sprint/internal/storage"
)

const (
	// KcalPerKgFat is the energy deficit assumed per kilogram of body weight lost.
	KcalPerKgFat = 7700.0

	fatShareOfCalories = 0.25
	kcalPerGramProtein = 4.0
	kcalPerGramCarbs   = 4.0
	kcalPerGramFat     = 9.0
)

// ErrIncompleteProfile matches any *IncompleteProfileError via errors.Is.
var ErrIncompleteProfile = errors.New("incomplete profile")

// IncompleteProfileError lists the profile fields the calculator could not use.
type IncompleteProfileError struct {
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("incomplete profile: missing %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteProfileError) Is(target error) bool {
	return target == ErrIncompleteProfile
}

// activityMultipliers maps activity levels to their TDEE multiplier.
// Also used for input validation in the profiles package.
var activityMultipliers = map[string]float64{
	storage.ActivitySedentary:  1.2,
	storage.ActivityLight:      1.375,
	storage.ActivityModerate:   1.55,
	storage.ActivityActive:     1.725,
	storage.ActivityVeryActive: 1.9,
}

// ActivityMultiplier reports the multiplier for level and whether the level is known.
func ActivityMultiplier(level string) (float64, bool) {
	m, ok := activityMultipliers[level]
	return m, ok
}

// DailyTarget is derived on demand from the profile and never persisted.
type DailyTarget struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	FatG     int `json:"fat_g"`
	CarbsG   int `json:"carbs_g"`
}

// WeeklyTarget is the 7-day projection used to seed a weekly budget.
type WeeklyTarget struct {
	Calories             int `json:"calories"`
	ProteinG             int `json:"protein_g"`
	FatG                 int `json:"fat_g"`
	CarbsG               int `json:"carbs_g"`
	WeekendBonusCalories int `json:"weekend_bonus_calories"`
}

// NutritionInfo is a product scaled to a quantity.
type NutritionInfo struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	FatG     float64 `json:"fat_g"`
	CarbsG   float64 `json:"carbs_g"`
	FiberG   float64 `json:"fiber_g"`
	SodiumMg float64 `json:"sodium_mg"`
}

// Calculator implements the Mifflin-St Jeor based targets.
// It is safe for concurrent use.
type Calculator struct {
	cfg config.NutritionConfig
}

func NewCalculator(cfg config.NutritionConfig) *Calculator {
	if cfg.ProteinGPerKg <= 0 {
		cfg.ProteinGPerKg = config.DefaultNutritionConfig().ProteinGPerKg
	}
	return &Calculator{cfg: cfg}
}

// Config returns the constants the calculator was built with.
func (c *Calculator) Config() config.NutritionConfig {
	return c.cfg
}

type physiology struct {
	weightKg float64
	heightCm float64
	age      int
	gender   string
	activity float64
}

func (c *Calculator) physiology(p storage.UserProfile) (physiology, error) {
	var missing []string
	var ph physiology

	if p.WeightKg == nil || *p.WeightKg <= 0 {
		missing = append(missing, "weight_kg")
	} else {
		ph.weightKg = *p.WeightKg
	}
	if p.HeightCm == nil || *p.HeightCm <= 0 {
		missing = append(missing, "height_cm")
	} else {
		ph.heightCm = *p.HeightCm
	}
	if p.Age == nil || *p.Age <= 0 {
		missing = append(missing, "age")
	} else {
		ph.age = *p.Age
	}
	if p.Gender == nil || !ValidGender(*p.Gender) {
		missing = append(missing, "gender")
	} else {
		ph.gender = *p.Gender
	}
	if m, ok := activityMultipliers[p.ActivityLevel]; ok {
		ph.activity = m
	} else {
		missing = append(missing, "activity_level")
	}

	if len(missing) > 0 {
		return physiology{}, &IncompleteProfileError{Missing: missing}
	}
	return ph, nil
}

func (c *Calculator) bmr(ph physiology) float64 {
	base := 10*ph.weightKg + 6.25*ph.heightCm - 5*float64(ph.age)
	switch ph.gender {
	case storage.GenderMale:
		return base + 5
	case storage.GenderOther:
		return base + c.cfg.OtherGenderConstant
	default:
		return base - 161
	}
}

// BMR returns the Mifflin-St Jeor basal metabolic rate.
func (c *Calculator) BMR(p storage.UserProfile) (float64, error) {
	ph, err := c.physiology(p)
	if err != nil {
		return 0, err
	}
	return c.bmr(ph), nil
}

// TDEE returns BMR times the activity multiplier.
func (c *Calculator) TDEE(p storage.UserProfile) (float64, error) {
	ph, err := c.physiology(p)
	if err != nil {
		return 0, err
	}
	return c.bmr(ph) * ph.activity, nil
}

// DailyTarget derives calories and macros for one day.
func (c *Calculator) DailyTarget(p storage.UserProfile) (DailyTarget, error) {
	ph, err := c.physiology(p)
	if err != nil {
		return DailyTarget{}, err
	}

	tdee := c.bmr(ph) * ph.activity
	dailyDeficit := p.TargetWeeklyLossKg * KcalPerKgFat / 7
	calories := int(math.Round(tdee - dailyDeficit))
	if c.cfg.MinCalories > 0 && calories < c.cfg.MinCalories {
		calories = c.cfg.MinCalories
	}

	protein := int(math.Round(ph.weightKg * c.cfg.ProteinGPerKg))
	fat := int(math.Round(float64(calories) * fatShareOfCalories / kcalPerGramFat))
	carbs := int(math.Round((float64(calories) - float64(protein)*kcalPerGramProtein - float64(fat)*kcalPerGramFat) / kcalPerGramCarbs))

	return DailyTarget{
		Calories: calories,
		ProteinG: protein,
		FatG:     fat,
		CarbsG:   carbs,
	}, nil
}

// WeekendBonus returns the per-day bonus for p: zero unless the weekend mode is active.
func (c *Calculator) WeekendBonus(p storage.UserProfile) int {
	if p.WeekendMode != storage.WeekendModeActive {
		return 0
	}
	return c.cfg.WeekendBonusKcal
}

// WeeklyTarget projects the daily target onto a week.
// The bonus is granted for WeekendBonusDays days whatever the configured weekend span is.
func (c *Calculator) WeeklyTarget(p storage.UserProfile) (WeeklyTarget, error) {
	daily, err := c.DailyTarget(p)
	if err != nil {
		return WeeklyTarget{}, err
	}
	return c.WeeklyFromDaily(daily, c.WeekendBonus(p)), nil
}

// WeeklyFromDaily multiplies a daily target by seven and adds the weekend bonus days.
func (c *Calculator) WeeklyFromDaily(daily DailyTarget, weekendBonus int) WeeklyTarget {
	return WeeklyTarget{
		Calories:             daily.Calories*7 + weekendBonus*c.cfg.WeekendBonusDays,
		ProteinG:             daily.ProteinG * 7,
		FatG:                 daily.FatG * 7,
		CarbsG:               daily.CarbsG * 7,
		WeekendBonusCalories: weekendBonus,
	}
}

// IsWeekend reports whether date falls inside the profile's weekend.
// Ranges wrap around Sunday, e.g. Friday(5)..Sunday(0).
func IsWeekend(p storage.UserProfile, date time.Time) bool {
	if p.WeekendMode != storage.WeekendModeActive {
		return false
	}
	return InWeekdayRange(int(date.Weekday()), p.WeekendStartDay, p.WeekendEndDay)
}

// InWeekdayRange tests dow against an inclusive, possibly wrapping, start..end range.
func InWeekdayRange(dow, start, end int) bool {
	if start <= end {
		return dow >= start && dow <= end
	}
	return dow >= start || dow <= end
}

// ScaleNutrition scales per-100g values linearly to grams.
func ScaleNutrition(product storage.Product, grams float64) NutritionInfo {
	m := grams / 100
	return NutritionInfo{
		Calories: int(math.Round(product.CaloriesPer100g * m)),
		ProteinG: round2(product.ProteinPer100g * m),
		FatG:     round2(product.FatPer100g * m),
		CarbsG:   round2(product.CarbsPer100g * m),
		FiberG:   round2(product.FiberPer100g * m),
		SodiumMg: round2(product.SodiumPer100g * m),
	}
}

func ValidGender(g string) bool {
	return g == storage.GenderMale || g == storage.GenderFemale || g == storage.GenderOther
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
