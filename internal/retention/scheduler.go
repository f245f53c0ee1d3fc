package retention

import (
	"context"
	"sync"
	"time"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/obs"
)

// Scheduler runs the sweep on a fixed interval. The first sweep fires
// immediately on Start so a freshly booted server does not wait a full
// interval to enforce retention.
type Scheduler struct {
	svc      *Service
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(svc *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{svc: svc, interval: interval}
}

// Start launches the sweep loop. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.runOnce(ctx)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) runOnce(ctx context.Context) {
	archived, err := s.svc.Sweep(ctx)
	fields := map[string]any{"archived": archived}
	if err != nil {
		fields["error"] = err.Error()
	}
	obs.Event("retention_sweep", fields)
}
