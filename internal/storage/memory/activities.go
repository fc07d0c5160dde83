package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

// ActivitiesMemoryStorage in-memory storage для тренировок
type ActivitiesMemoryStorage struct {
	mu         sync.RWMutex
	activities map[uuid.UUID]storage.Activity
}

func NewActivitiesMemoryStorage() *ActivitiesMemoryStorage {
	return &ActivitiesMemoryStorage{
		activities: make(map[uuid.UUID]storage.Activity),
	}
}

func (s *ActivitiesMemoryStorage) CreateActivity(ctx context.Context, activity *storage.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	now := time.Now().UTC()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	s.activities[activity.ID] = *activity
	return nil
}

func (s *ActivitiesMemoryStorage) GetActivity(ctx context.Context, userID string, id uuid.UUID) (*storage.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[id]
	if !ok || a.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return &a, nil
}

func (s *ActivitiesMemoryStorage) ListActivities(ctx context.Context, userID string, from, to time.Time) ([]storage.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.Activity{}
	for _, a := range s.activities {
		if a.UserID != userID || a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		result = append(result, a)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

func (s *ActivitiesMemoryStorage) UpdateActivity(ctx context.Context, activity *storage.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.activities[activity.ID]
	if !ok || existing.UserID != activity.UserID {
		return storage.ErrNotFound
	}
	activity.CreatedAt = existing.CreatedAt
	activity.UpdatedAt = time.Now().UTC()

	s.activities[activity.ID] = *activity
	return nil
}

func (s *ActivitiesMemoryStorage) DeleteActivity(ctx context.Context, userID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[id]
	if !ok || a.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.activities, id)
	return nil
}
