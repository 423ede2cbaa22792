// Package jobs holds background maintenance loops.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/revival/clans/internal/metrics"
	"github.com/revival/clans/internal/service"
)

// AnnouncementSweeper periodically purges expired and tombstoned
// announcements so the store does not accumulate dead records. Retrievals
// already hide them; the sweeper only reclaims space.
type AnnouncementSweeper struct {
	engine   *service.Engine
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewAnnouncementSweeper creates the sweeper job.
func NewAnnouncementSweeper(engine *service.Engine, interval time.Duration) *AnnouncementSweeper {
	if interval == 0 {
		interval = 10 * time.Minute
	}
	return &AnnouncementSweeper{
		engine:   engine,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the sweep loop.
func (s *AnnouncementSweeper) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()
	slog.Info("announcement sweeper started", slog.Duration("interval", s.interval))
}

// Stop gracefully stops the sweep loop.
func (s *AnnouncementSweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	slog.Info("announcement sweeper stopped")
}

func (s *AnnouncementSweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *AnnouncementSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	purged, err := s.engine.SweepExpiredAnnouncements(ctx)
	if err != nil {
		slog.Error("announcement sweep failed", slog.Any("error", err))
	}
	if purged > 0 {
		metrics.AnnouncementsSwept.Add(float64(purged))
		slog.Info("announcement sweep", slog.Int("purged", purged))
	}
}

// RunOnce runs one sweep for tests or manual triggering.
func (s *AnnouncementSweeper) RunOnce(ctx context.Context) (int, error) {
	return s.engine.SweepExpiredAnnouncements(ctx)
}

// IsRunning reports whether the loop is active.
func (s *AnnouncementSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
