package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/nearby/internal/logger"
)

// Reapable is anything holding sessions that can go idle.
type Reapable interface {
	Reap() int
}

// SessionReaper closes idle voice sessions so abandoned clients do not
// keep backend streams open.
type SessionReaper struct {
	target   Reapable
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewSessionReaper(target Reapable, log logger.Logger, interval time.Duration) *SessionReaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionReaper{
		target:   target,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (sr *SessionReaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sr.Collect()
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (sr *SessionReaper) Stop() {
	close(sr.stopCh)
}

// Collect runs one pass and returns how many sessions were closed.
func (sr *SessionReaper) Collect() int {
	n := sr.target.Reap()
	if n > 0 {
		sr.logger.Info("closed idle voice sessions", logger.Int("count", n))
	} else {
		sr.logger.Debug("no idle voice sessions")
	}
	return n
}
