package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/cut-sprint/internal/storage"
	"github.com/google/uuid"
)

// ReportsMemoryStorage хранит только метаданные; байты отчёта живут в blob store.
type ReportsMemoryStorage struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]storage.ReportMeta
}

func NewReportsMemoryStorage() *ReportsMemoryStorage {
	return &ReportsMemoryStorage{reports: make(map[uuid.UUID]storage.ReportMeta)}
}

func (s *ReportsMemoryStorage) CreateReport(ctx context.Context, report *storage.ReportMeta) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	report.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.reports[report.ID] = *report
	s.mu.Unlock()
	return nil
}

func (s *ReportsMemoryStorage) GetReport(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &report, nil
}

// ListReports returns the user's reports, newest first.
func (s *ReportsMemoryStorage) ListReports(ctx context.Context, userID string, limit, offset int) ([]storage.ReportMeta, error) {
	s.mu.RLock()
	own := []storage.ReportMeta{}
	for _, r := range s.reports {
		if r.UserID == userID {
			own = append(own, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(own, func(i, j int) bool {
		if !own[i].CreatedAt.Equal(own[j].CreatedAt) {
			return own[i].CreatedAt.After(own[j].CreatedAt)
		}
		return own[i].ID.String() < own[j].ID.String()
	})
	return paginate(own, limit, offset), nil
}

func (s *ReportsMemoryStorage) DeleteReport(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

// paginate режет уже отсортированный срез; limit <= 0 означает "без лимита".
func paginate[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
