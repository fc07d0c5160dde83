package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/fdg312/cut-sprint/internal/dates"
	"github.com/fdg312/cut-sprint/internal/storage"
)

// DefaultDailyLimit анализов на пользователя в сутки
const DefaultDailyLimit = 10

// Gate enforces the per-user daily quota in front of the analyzer.
// The day is the server's local calendar date.
type Gate struct {
	usage storage.AIUsageStorage
	limit int
	now   func() time.Time
}

func NewGate(usage storage.AIUsageStorage, limit int) *Gate {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &Gate{usage: usage, limit: limit, now: time.Now}
}

// SetClock overrides the wall clock (tests).
func (g *Gate) SetClock(now func() time.Time) {
	g.now = now
}

func (g *Gate) Limit() int {
	return g.limit
}

// CheckAndReserve takes one slot of today's quota.
// The increment and the limit check are a single storage operation, so
// concurrent callers never get more than limit reservations per day.
func (g *Gate) CheckAndReserve(ctx context.Context, userID string) (*Reservation, error) {
	day := dates.Day(g.now())

	count, ok, err := g.usage.ReserveUsage(ctx, userID, day, g.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve analysis quota: %w", err)
	}
	if !ok {
		return nil, &QuotaExceededError{CurrentUsage: min(count, g.limit), DailyLimit: g.limit}
	}

	return g.reservation(day, count), nil
}

// Usage reports today's counter without reserving.
func (g *Gate) Usage(ctx context.Context, userID string) (*UsageResponse, error) {
	day := dates.Day(g.now())

	count, err := g.usage.GetUsage(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis usage: %w", err)
	}
	return g.reservation(day, count), nil
}

func (g *Gate) reservation(day time.Time, count int) *Reservation {
	count = min(count, g.limit)
	return &Reservation{
		Date:         dates.Format(day),
		CurrentUsage: count,
		DailyLimit:   g.limit,
		Remaining:    g.limit - count,
	}
}
