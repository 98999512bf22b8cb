package pool

import (
	"log/slog"
	"time"
)

// Sweeper runs SweepExpired on its own timer so abandoned sessions cannot leak
// pool capacity. It is the only cleanup path for callers that never Release.
type Sweeper struct {
	mgr      *Manager
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewSweeper(mgr *Manager, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval == 0 {
		interval = 30 * time.Second
	}

	return &Sweeper{
		mgr:      mgr,
		logger:   logger.With("component", "session-sweeper"),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop. It blocks and should be called in a goroutine.
func (s *Sweeper) Start() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Session sweeper started", "interval", s.interval)

	for {
		select {
		case <-s.stopCh:
			s.logger.Info("Session sweeper stopped")
			return
		case <-ticker.C:
			if reclaimed := s.mgr.SweepExpired(); reclaimed > 0 {
				s.logger.Info("Sweep completed", "reclaimed", reclaimed)
			}
		}
	}
}

func (s *Sweeper) Stop() {
	select {
	case <-s.stopCh:
		// already closed
	default:
		close(s.stopCh)
	}
}
