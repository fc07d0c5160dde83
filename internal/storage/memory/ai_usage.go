package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
)

type usageKey struct {
	userID string
	date   string
}

// AIUsageMemoryStorage дневные счётчики AI-анализов
type AIUsageMemoryStorage struct {
	mu     sync.Mutex
	counts map[usageKey]int
}

func NewAIUsageMemoryStorage() *AIUsageMemoryStorage {
	return &AIUsageMemoryStorage{
		counts: make(map[usageKey]int),
	}
}

func (s *AIUsageMemoryStorage) ReserveUsage(ctx context.Context, userID string, date time.Time, limit int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey{userID: userID, date: date.UTC().Format("2006-01-02")}
	current := s.counts[key]
	if current >= limit {
		return current, false, nil
	}

	s.counts[key] = current + 1
	return current + 1, true, nil
}

func (s *AIUsageMemoryStorage) GetUsage(ctx context.Context, userID string, date time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts[usageKey{userID: userID, date: date.UTC().Format("2006-01-02")}], nil
}

var _ storage.AIUsageStorage = (*AIUsageMemoryStorage)(nil)
