package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

// WeightsMemoryStorage in-memory storage для взвешиваний
type WeightsMemoryStorage struct {
	mu      sync.RWMutex
	samples map[uuid.UUID]storage.WeightSample
}

func NewWeightsMemoryStorage() *WeightsMemoryStorage {
	return &WeightsMemoryStorage{
		samples: make(map[uuid.UUID]storage.WeightSample),
	}
}

func (s *WeightsMemoryStorage) AddWeight(ctx context.Context, sample *storage.WeightSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}
	sample.CreatedAt = time.Now().UTC()

	s.samples[sample.ID] = *sample
	return nil
}

func (s *WeightsMemoryStorage) ListWeights(ctx context.Context, userID string, from, to time.Time) ([]storage.WeightSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.WeightSample{}
	for _, w := range s.samples {
		if w.UserID != userID || w.Date.Before(from) || w.Date.After(to) {
			continue
		}
		result = append(result, w)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

func (s *WeightsMemoryStorage) LatestWeight(ctx context.Context, userID string) (*storage.WeightSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *storage.WeightSample
	for _, w := range s.samples {
		if w.UserID != userID {
			continue
		}
		if latest == nil || w.Date.After(latest.Date) ||
			(w.Date.Equal(latest.Date) && w.CreatedAt.After(latest.CreatedAt)) {
			copied := w
			latest = &copied
		}
	}

	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

func (s *WeightsMemoryStorage) DeleteWeight(ctx context.Context, userID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.samples[id]
	if !ok || w.UserID != userID {
		return storage.ErrNotFound
	}

	delete(s.samples, id)
	return nil
}
