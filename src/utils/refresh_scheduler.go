package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"crypto-compare/src/logger"
)

// RefreshFunc is one refresh cycle. Its error is logged, never fatal.
type RefreshFunc func(ctx context.Context) error

// -----------------------------------------------------------------------------

// RefreshScheduler runs a refresh immediately and then on a fixed interval
type RefreshScheduler struct {
	Interval time.Duration
	Refresh  RefreshFunc
	Logger   *logger.Logger

	isRunning atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	ticks     atomic.Int64
}

// -----------------------------------------------------------------------------

func NewRefreshScheduler(interval time.Duration, refresh RefreshFunc, l *logger.Logger) *RefreshScheduler {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshScheduler{
		Interval: interval,
		Refresh:  refresh,
		Logger:   l,
	}
}

// -----------------------------------------------------------------------------

// Start launches the loop. Calling Start on a running scheduler is a no-op.
func (s *RefreshScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning.CompareAndSwap(false, true) {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(loopCtx)

	s.Logger.Info("Refresh scheduler started (every %v)", s.Interval)
}

func (s *RefreshScheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	defer s.isRunning.Store(false)

	s.Tick(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// -----------------------------------------------------------------------------

// Tick runs one refresh cycle synchronously
func (s *RefreshScheduler) Tick(ctx context.Context) {
	s.ticks.Add(1)
	if err := s.Refresh(ctx); err != nil {
		s.Logger.Warning("Refresh failed: %v", err)
	}
}

// Ticks reports how many cycles have run
func (s *RefreshScheduler) Ticks() int64 {
	return s.ticks.Load()
}

// -----------------------------------------------------------------------------

// Stop cancels the loop and waits for an in-progress tick to finish
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()

	s.Logger.Info("Refresh scheduler stopped")
}

func (s *RefreshScheduler) IsRunning() bool {
	return s.isRunning.Load()
}
