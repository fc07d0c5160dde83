package analysis

import (
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/fdg312/cut-sprint/internal/trends"
)

// foodValues: калории и БЖУ на 100 г (яйцо, банан, яблоко считаются на штуку)
type foodValues struct {
	calories int
	protein  float64
	carbs    float64
	fat      float64
}

type foodEntry struct {
	keywords []string
	values   foodValues
}

// foodTable matches on substrings so Polish inflections (jajka, jabłko) hit too.
var foodTable = []foodEntry{
	{[]string{"chicken", "kurczak", "pierś"}, foodValues{165, 31, 0, 3.6}},
	{[]string{"rice", "ryż"}, foodValues{130, 2.7, 28, 0.3}},
	{[]string{"egg", "jajko", "jajka"}, foodValues{155, 13, 1.1, 11}},
	{[]string{"bread", "chleb", "kanapka"}, foodValues{265, 9, 49, 3.2}},
	{[]string{"milk", "mleko"}, foodValues{61, 3.2, 4.8, 3.3}},
	{[]string{"banana", "banan"}, foodValues{89, 1.1, 23, 0.3}},
	{[]string{"apple", "jabłko"}, foodValues{52, 0.3, 14, 0.2}},
	{[]string{"broccoli", "brokuł"}, foodValues{34, 2.8, 7, 0.4}},
}

var unitWords = map[string]bool{
	"g": true, "gram": true, "grams": true, "ml": true,
	"piece": true, "pieces": true, "pcs": true,
	"tbsp": true, "tablespoon": true, "tablespoons": true,
	"cup": true, "cups": true, "slice": true, "slices": true,
	"szt": true, "kawałek": true, "łyżka": true, "szklanka": true,
}

// Польские единицы склоняются (gramów, łyżki, sztuki), поэтому сравниваем по основе.
var unitStems = []string{"gram", "szt", "łyż", "szklank", "kawał", "plaster", "plastr"}

var clarificationSuggestions = []string{
	"Give the weight in grams (e.g. 200g)",
	"Give the number of pieces (e.g. 2 eggs)",
	"Give the volume (e.g. 1 cup)",
	"Describe the portion size (e.g. a medium banana)",
}

// Estimator is the local fallback used when the model is unavailable.
// It never fails and always returns a valid AnalysisResult.
type Estimator struct {
	intN func(n int) int
	now  func() time.Time
}

// NewEstimator accepts nil for both arguments to use math/rand and the wall clock.
func NewEstimator(intN func(n int) int, now func() time.Time) *Estimator {
	if intN == nil {
		intN = rand.IntN
	}
	if now == nil {
		now = time.Now
	}
	return &Estimator{intN: intN, now: now}
}

func (e *Estimator) Estimate(text string) AnalysisResult {
	lower := strings.ToLower(text)

	if !HasUnitWord(lower) {
		return AnalysisResult{
			Type:        TypeClarificationNeeded,
			Question:    "I need more detail about the amount. How much exactly did you eat?",
			Suggestions: append([]string(nil), clarificationSuggestions...),
			Source:      SourceFallback,
		}
	}

	values, matched := matchFoods(lower)
	if !matched {
		values = foodValues{
			calories: e.intN(300) + 200,
			protein:  float64(e.intN(20) + 10),
			carbs:    float64(e.intN(30) + 20),
			fat:      float64(e.intN(10) + 5),
		}
	}

	mealType, name := MealTypeForHour(e.now().Hour())
	return AnalysisResult{
		Type: TypeNutritionAnalysis,
		Data: &NutritionAnalysis{
			TotalCalories: Kcal(values.calories),
			TotalProtein:  values.protein,
			TotalCarbs:    values.carbs,
			TotalFat:      values.fat,
			Meals: []AnalyzedMeal{{
				Name:     name,
				MealType: mealType,
				Calories: Kcal(values.calories),
				Protein:  values.protein,
				Carbs:    values.carbs,
				Fat:      values.fat,
			}},
			Confidence: "medium",
			Notes:      "Estimate based on the given quantities (fallback mode)",
		},
		Source: SourceFallback,
	}
}

// HasUnitWord reports whether the text names a quantity unit, either as a word
// or glued to a number ("200g").
func HasUnitWord(text string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		word := strings.TrimLeftFunc(tok, unicode.IsDigit)
		if unitWords[word] {
			return true
		}
		for _, stem := range unitStems {
			if strings.HasPrefix(word, stem) {
				return true
			}
		}
	}
	return false
}

// MealTypeForHour: <12 breakfast, <16 lunch, <20 dinner, otherwise snack.
func MealTypeForHour(hour int) (mealType, name string) {
	switch {
	case hour < 12:
		return storage.MealTypeBreakfast, "Breakfast"
	case hour < 16:
		return storage.MealTypeLunch, "Lunch"
	case hour < 20:
		return storage.MealTypeDinner, "Dinner"
	default:
		return storage.MealTypeSnack, "Snack"
	}
}

// matchFoods sums the table rows whose keywords occur in text.
func matchFoods(text string) (foodValues, bool) {
	var total foodValues
	matched := false
	for _, entry := range foodTable {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				total.calories += entry.values.calories
				total.protein = trends.Round2(total.protein + entry.values.protein)
				total.carbs = trends.Round2(total.carbs + entry.values.carbs)
				total.fat = trends.Round2(total.fat + entry.values.fat)
				matched = true
				break
			}
		}
	}
	return total, matched
}
