package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

// BudgetsMemoryStorage in-memory недельные бюджеты.
// Один мьютекс на всё хранилище делает check-and-insert в CreateActiveBudget атомарным.
type BudgetsMemoryStorage struct {
	mu      sync.RWMutex
	budgets map[uuid.UUID]storage.WeeklyBudget
}

func NewBudgetsMemoryStorage() *BudgetsMemoryStorage {
	return &BudgetsMemoryStorage{
		budgets: make(map[uuid.UUID]storage.WeeklyBudget),
	}
}

func (s *BudgetsMemoryStorage) GetActiveBudget(ctx context.Context, userID string, startDate time.Time) (*storage.WeeklyBudget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b := s.findActive(userID, startDate, uuid.Nil); b != nil {
		return b, nil
	}
	return nil, storage.ErrNotFound
}

func (s *BudgetsMemoryStorage) CreateActiveBudget(ctx context.Context, budget storage.WeeklyBudget) (*storage.WeeklyBudget, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findActive(budget.UserID, budget.StartDate, uuid.Nil); existing != nil {
		return existing, false, nil
	}

	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	now := time.Now().UTC()
	budget.Status = storage.BudgetStatusActive
	budget.CreatedAt = now
	budget.UpdatedAt = now

	s.budgets[budget.ID] = budget

	created := budget
	return &created, true, nil
}

func (s *BudgetsMemoryStorage) GetBudget(ctx context.Context, userID string, id uuid.UUID) (*storage.WeeklyBudget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.budgets[id]
	if !ok || b.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return &b, nil
}

func (s *BudgetsMemoryStorage) ListBudgets(ctx context.Context, userID string, limit int) ([]storage.WeeklyBudget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.WeeklyBudget{}
	for _, b := range s.budgets {
		if b.UserID == userID {
			result = append(result, b)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].StartDate.After(result[j].StartDate)
	})

	return paginate(result, limit, 0), nil
}

func (s *BudgetsMemoryStorage) UpdateBudget(ctx context.Context, budget *storage.WeeklyBudget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.budgets[budget.ID]
	if !ok || existing.UserID != budget.UserID {
		return storage.ErrNotFound
	}
	if budget.Status == storage.BudgetStatusActive &&
		s.findActive(budget.UserID, budget.StartDate, budget.ID) != nil {
		return storage.ErrConflict
	}

	budget.CreatedAt = existing.CreatedAt
	budget.UpdatedAt = time.Now().UTC()
	s.budgets[budget.ID] = *budget

	return nil
}

// findActive ищет active бюджет недели, пропуская exclude. Вызывать под s.mu.
func (s *BudgetsMemoryStorage) findActive(userID string, startDate time.Time, exclude uuid.UUID) *storage.WeeklyBudget {
	for id, b := range s.budgets {
		if id == exclude {
			continue
		}
		if b.UserID == userID && b.Status == storage.BudgetStatusActive && b.StartDate.Equal(startDate) {
			copied := b
			return &copied
		}
	}
	return nil
}
