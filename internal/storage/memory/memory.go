package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
)

// MemoryStorage in-memory реализация storage.Storage
type MemoryStorage struct {
	mu       sync.RWMutex
	profiles map[string]storage.UserProfile

	weights  *WeightsMemoryStorage
	meals    *MealsMemoryStorage
	budgets  *BudgetsMemoryStorage
	aiUsage  *AIUsageMemoryStorage
	products *ProductsMemoryStorage
	analyses *MealAnalysesMemoryStorage
	reports  *ReportsMemoryStorage
	activity *ActivitiesMemoryStorage
}

var _ storage.Storage = (*MemoryStorage)(nil)

// New создаёт пустой MemoryStorage
func New() *MemoryStorage {
	return &MemoryStorage{
		profiles: make(map[string]storage.UserProfile),
		weights:  NewWeightsMemoryStorage(),
		meals:    NewMealsMemoryStorage(),
		budgets:  NewBudgetsMemoryStorage(),
		aiUsage:  NewAIUsageMemoryStorage(),
		products: NewProductsMemoryStorage(),
		analyses: NewMealAnalysesMemoryStorage(),
		reports:  NewReportsMemoryStorage(),
		activity: NewActivitiesMemoryStorage(),
	}
}

func (m *MemoryStorage) GetProfile(ctx context.Context, userID string) (*storage.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return &p, nil
}

func (m *MemoryStorage) UpsertProfile(ctx context.Context, profile *storage.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.profiles[profile.UserID]; ok {
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	m.profiles[profile.UserID] = *profile

	return nil
}

func (m *MemoryStorage) Close() error {
	// no-op для memory
	return nil
}

func (m *MemoryStorage) GetWeightsStorage() storage.WeightsStorage {
	return m.weights
}

func (m *MemoryStorage) GetMealsStorage() storage.MealsStorage {
	return m.meals
}

func (m *MemoryStorage) GetBudgetsStorage() storage.BudgetsStorage {
	return m.budgets
}

func (m *MemoryStorage) GetAIUsageStorage() storage.AIUsageStorage {
	return m.aiUsage
}

func (m *MemoryStorage) GetProductsStorage() storage.ProductsStorage {
	return m.products
}

func (m *MemoryStorage) GetMealAnalysesStorage() storage.MealAnalysesStorage {
	return m.analyses
}

// GetReportsStorage returns the reports storage
func (m *MemoryStorage) GetReportsStorage() storage.ReportsStorage {
	return m.reports
}

func (m *MemoryStorage) GetActivitiesStorage() storage.ActivitiesStorage {
	return m.activity
}
