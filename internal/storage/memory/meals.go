package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

// MealsMemoryStorage in-memory дневник питания
type MealsMemoryStorage struct {
	mu    sync.RWMutex
	meals map[uuid.UUID]storage.Meal
}

func NewMealsMemoryStorage() *MealsMemoryStorage {
	return &MealsMemoryStorage{
		meals: make(map[uuid.UUID]storage.Meal),
	}
}

func (s *MealsMemoryStorage) CreateMeal(ctx context.Context, meal *storage.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}
	meal.CreatedAt = time.Now().UTC()

	s.meals[meal.ID] = *meal
	return nil
}

func (s *MealsMemoryStorage) ListMeals(ctx context.Context, userID string, from, to time.Time) ([]storage.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.Meal{}
	for _, m := range s.meals {
		if m.UserID != userID || m.Date.Before(from) || m.Date.After(to) {
			continue
		}
		result = append(result, m)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

func (s *MealsMemoryStorage) DeleteMeal(ctx context.Context, userID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meals[id]
	if !ok || m.UserID != userID {
		return storage.ErrNotFound
	}

	delete(s.meals, id)
	return nil
}
