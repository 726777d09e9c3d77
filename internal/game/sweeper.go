package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSweeper runs SweepExpired on a fixed interval so UI-facing state never
// shows a stale active effect for more than one poll. Shut down the returned
// scheduler to stop it.
func (s *Service) StartSweeper(interval time.Duration) (gocron.Scheduler, error) {
	if interval <= 0 {
		interval = time.Minute
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := s.SweepExpired(context.Background())
			if err != nil {
				slog.Warn("expiry sweep failed", "err", err)
				return
			}
			if n > 0 {
				slog.Debug("swept expired effects", "count", n)
			}
		}),
	); err != nil {
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}

	sched.Start()
	return sched, nil
}
