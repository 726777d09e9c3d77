// Package game derives RPG-style character state (XP, level, buffs, streaks,
// achievements, combos) from the activity log held in the store.
package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/masonjarrr/goal-game/internal/store"
)

// Service is the gamification engine over a single store handle. One public
// call is one atomic unit: every public method, readers included, takes the
// writer lock, and mutating methods end with a persistence flush, so
// concurrent callers observe either the pre- or post-state of a call, never
// an interleaving.
type Service struct {
	db  *store.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewService wraps an open store.
func NewService(db *store.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// DB exposes the underlying store handle for read-only collaborators.
func (s *Service) DB() *store.DB {
	return s.db
}

func (s *Service) nowMs() int64 {
	return s.now().UnixMilli()
}

// flush persists the store after a mutation. A failed flush is a warning,
// not a hard failure: the in-memory state stays authoritative and the next
// successful flush reconciles durable state.
func (s *Service) flush(ctx context.Context) {
	if err := s.db.Flush(ctx); err != nil {
		slog.Warn("persistence flush failed", "err", err)
	}
}

// dayBounds returns the [start, end) Unix-millisecond bounds of the local
// calendar day containing t. Streak continuity and the one-claim-per-day
// combo rule both use local-day boundaries.
func dayBounds(t time.Time) (int64, int64) {
	t = t.Local()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli()
}

const localDay = "2006-01-02"

func dayKey(ms int64) string {
	return time.UnixMilli(ms).Local().Format(localDay)
}
