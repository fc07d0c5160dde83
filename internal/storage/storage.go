package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by every storage implementation when a keyed lookup misses.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would break a uniqueness rule,
	// e.g. a second active budget for the same week.
	ErrConflict = errors.New("conflict")
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"

	ActivitySedentary  = "sedentary"
	ActivityLight      = "light"
	ActivityModerate   = "moderate"
	ActivityActive     = "active"
	ActivityVeryActive = "very_active"

	WeekendModeActive   = "active"
	WeekendModeInactive = "inactive"

	BudgetStatusActive    = "active"
	BudgetStatusCompleted = "completed"
	BudgetStatusCancelled = "cancelled"

	WeightSourceManual      = "manual"
	WeightSourceAppleHealth = "apple_health"
	WeightSourceGoogleFit   = "google_fit"

	ActivityTypeRunning     = "running"
	ActivityTypeCycling     = "cycling"
	ActivityTypeSwimming    = "swimming"
	ActivityTypeStrength    = "strength"
	ActivityTypeFlexibility = "flexibility"
	ActivityTypeMixed       = "mixed"
	ActivityTypeWalking     = "walking"

	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
	MealTypeSnack     = "snack"
)

// UserProfile holds the physiological inputs of the calculator.
// Weight, height, age and gender are pointers: a freshly created profile has none of them.
type UserProfile struct {
	UserID             string
	WeightKg           *float64
	HeightCm           *float64
	Age                *int
	Gender             *string
	ActivityLevel      string
	TargetWeeklyLossKg float64
	WeekendMode        string
	WeekendStartDay    int // 0=Sunday..6=Saturday
	WeekendEndDay      int
	Region             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewDefaultProfile returns a profile with the registration defaults.
func NewDefaultProfile(userID string) UserProfile {
	return UserProfile{
		UserID:             userID,
		ActivityLevel:      ActivityModerate,
		TargetWeeklyLossKg: 0.5,
		WeekendMode:        WeekendModeInactive,
		WeekendStartDay:    5,
		WeekendEndDay:      0,
	}
}

// ProfilesStorage хранит профили пользователей (один профиль на user_id)
type ProfilesStorage interface {
	// GetProfile returns ErrNotFound when the user has no profile yet.
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)

	// UpsertProfile creates or replaces the profile of profile.UserID.
	UpsertProfile(ctx context.Context, profile *UserProfile) error
}

// WeightSample одно взвешивание
type WeightSample struct {
	ID        uuid.UUID
	UserID    string
	Date      time.Time // date only, UTC midnight
	ValueKg   float64
	Flags     []string
	Source    string
	Notes     string
	CreatedAt time.Time
}

type WeightsStorage interface {
	AddWeight(ctx context.Context, sample *WeightSample) error

	// ListWeights returns samples with from <= date <= to ordered by date ascending.
	ListWeights(ctx context.Context, userID string, from, to time.Time) ([]WeightSample, error)

	// LatestWeight returns ErrNotFound when the user never weighed in.
	LatestWeight(ctx context.Context, userID string) (*WeightSample, error)

	DeleteWeight(ctx context.Context, userID string, id uuid.UUID) error
}

// Meal is one nutrition log entry.
type Meal struct {
	ID            uuid.UUID
	UserID        string
	Date          time.Time
	MealType      string
	Description   string
	TotalCalories int
	TotalProtein  float64
	TotalFat      float64
	TotalCarbs    float64
	CreatedAt     time.Time
}

type MealsStorage interface {
	CreateMeal(ctx context.Context, meal *Meal) error

	// ListMeals returns meals with from <= date <= to ordered by date, then creation time.
	ListMeals(ctx context.Context, userID string, from, to time.Time) ([]Meal, error)

	DeleteMeal(ctx context.Context, userID string, id uuid.UUID) error
}

// Activity is one logged workout with its estimated burn.
type Activity struct {
	ID                uuid.UUID
	UserID            string
	Date              time.Time
	Type              string
	DurationMinutes   int
	EstimatedCalories int
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type ActivitiesStorage interface {
	CreateActivity(ctx context.Context, activity *Activity) error

	// GetActivity returns ErrNotFound for a missing row or one owned by another user.
	GetActivity(ctx context.Context, userID string, id uuid.UUID) (*Activity, error)

	// ListActivities returns activities with from <= date <= to, newest date first.
	ListActivities(ctx context.Context, userID string, from, to time.Time) ([]Activity, error)

	UpdateActivity(ctx context.Context, activity *Activity) error
	DeleteActivity(ctx context.Context, userID string, id uuid.UUID) error
}

// WeeklyBudget недельный бюджет калорий, не более одного active на (user_id, start_date)
type WeeklyBudget struct {
	ID                   uuid.UUID
	UserID               string
	StartDate            time.Time
	EndDate              time.Time
	TargetCalories       int
	TargetProtein        int
	TargetFat            int
	TargetCarbs          int
	WeekendBonusCalories int
	Status               string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type BudgetsStorage interface {
	// GetActiveBudget returns ErrNotFound when the week has no active budget.
	GetActiveBudget(ctx context.Context, userID string, startDate time.Time) (*WeeklyBudget, error)

	// CreateActiveBudget inserts budget unless an active row already exists for
	// (UserID, StartDate). It returns the stored row and whether it was created by this call.
	CreateActiveBudget(ctx context.Context, budget WeeklyBudget) (*WeeklyBudget, bool, error)

	GetBudget(ctx context.Context, userID string, id uuid.UUID) (*WeeklyBudget, error)

	// ListBudgets returns the newest weeks first.
	ListBudgets(ctx context.Context, userID string, limit int) ([]WeeklyBudget, error)

	UpdateBudget(ctx context.Context, budget *WeeklyBudget) error
}

// AIUsageStorage keeps the daily AI analysis counter.
type AIUsageStorage interface {
	// ReserveUsage atomically increments the (userID, date) counter only while it is below limit.
	// It returns the counter after the call and whether the increment happened.
	ReserveUsage(ctx context.Context, userID string, date time.Time, limit int) (int, bool, error)

	// GetUsage returns 0 for a day without usage.
	GetUsage(ctx context.Context, userID string, date time.Time) (int, error)
}

// Product продукт с нутриентами на 100 г
type Product struct {
	ID              uuid.UUID
	Name            string
	Brand           string
	Barcode         string
	CaloriesPer100g float64
	ProteinPer100g  float64
	FatPer100g      float64
	CarbsPer100g    float64
	FiberPer100g    float64
	SodiumPer100g   float64
	CreatedAt       time.Time
}

type ProductsStorage interface {
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)

	// SearchProducts matches name, brand or barcode case-insensitively. Empty query lists all.
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
}

// MealAnalysis сохранённый результат AI-анализа
type MealAnalysis struct {
	ID         uuid.UUID
	UserID     string
	InputText  string
	Region     string
	ResultType string // nutrition_analysis | clarification_needed
	Result     []byte // JSON
	Source     string // llm | fallback
	CreatedAt  time.Time
}

type MealAnalysesStorage interface {
	SaveAnalysis(ctx context.Context, analysis *MealAnalysis) error

	// ListAnalyses returns the newest analyses first.
	ListAnalyses(ctx context.Context, userID string, limit int) ([]MealAnalysis, error)
}

// ReportsStorage интерфейс для работы с отчётами
type ReportsStorage interface {
	CreateReport(ctx context.Context, report *ReportMeta) error
	GetReport(ctx context.Context, id uuid.UUID) (*ReportMeta, error)
	ListReports(ctx context.Context, userID string, limit, offset int) ([]ReportMeta, error)
	DeleteReport(ctx context.Context, id uuid.UUID) error
}

// ReportMeta метаданные недельного отчёта
type ReportMeta struct {
	ID        uuid.UUID
	UserID    string
	Format    string    // "pdf" or "csv"
	WeekStart time.Time // Monday
	ObjectKey string
	SizeBytes int64
	Status    string // "ready" or "failed"
	CreatedAt time.Time
}

// Storage aggregates every domain storage behind one handle.
type Storage interface {
	ProfilesStorage

	GetWeightsStorage() WeightsStorage
	GetMealsStorage() MealsStorage
	GetBudgetsStorage() BudgetsStorage
	GetAIUsageStorage() AIUsageStorage
	GetProductsStorage() ProductsStorage
	GetMealAnalysesStorage() MealAnalysesStorage
	GetReportsStorage() ReportsStorage
	GetActivitiesStorage() ActivitiesStorage

	// Close закрывает соединение (для Postgres)
	Close() error
}
