package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

// MealAnalysesMemoryStorage хранит историю AI-анализов
type MealAnalysesMemoryStorage struct {
	mu       sync.RWMutex
	analyses []storage.MealAnalysis
}

func NewMealAnalysesMemoryStorage() *MealAnalysesMemoryStorage {
	return &MealAnalysesMemoryStorage{}
}

func (s *MealAnalysesMemoryStorage) SaveAnalysis(ctx context.Context, analysis *storage.MealAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	analysis.CreatedAt = time.Now().UTC()

	copied := *analysis
	copied.Result = append([]byte(nil), analysis.Result...)
	s.analyses = append(s.analyses, copied)
	return nil
}

func (s *MealAnalysesMemoryStorage) ListAnalyses(ctx context.Context, userID string, limit int) ([]storage.MealAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.MealAnalysis{}
	// обратный порядок вставки = новые первыми
	for i := len(s.analyses) - 1; i >= 0; i-- {
		if s.analyses[i].UserID == userID {
			result = append(result, s.analyses[i])
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return paginate(result, limit, 0), nil
}
