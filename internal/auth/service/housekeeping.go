package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/workouttracker/internal/auth/store"
)

// HousekeepingService periodically purges expired and used reset tokens.
type HousekeepingService struct {
	Tokens   store.ResetTokens
	Logger   *slog.Logger
	Interval time.Duration
	Clock    func() time.Time

	// Internal channels for lifecycle management
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(tokens store.ResetTokens, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Tokens:   tokens,
		Logger:   logger,
		Interval: interval,
		Clock:    time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	s.started = true
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished. It is safe to
// call more than once.
func (s *HousekeepingService) Stop() {
	first := false
	s.stopOnce.Do(func() {
		close(s.stopCh)
		first = true
	})
	if !s.started {
		return
	}
	<-s.doneCh
	if first {
		s.Logger.Info("housekeeping service stopped")
	}
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one purge pass and reports how many tokens were removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	n, err := s.Tokens.DeleteExpiredResetTokens(ctx, s.Clock())
	if err != nil {
		s.Logger.Error("failed to delete expired reset tokens", "error", err)
		return 0
	}
	s.Logger.Info("housekeeping cleanup completed", "reset_tokens_deleted", n)
	return n
}
