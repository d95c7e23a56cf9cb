package devicesync

import (
	"context"
	"errors"
	"time"

	"device-sync/feature/devicesync/engine"

	"go.uber.org/zap"
)

// Scheduler triggers reconciliation runs on a fixed interval. Run outcomes
// are logged and persisted by the engine; the scheduler itself never fails.
type Scheduler struct {
	service  *Service
	interval time.Duration
	logger   *zap.Logger

	stop chan struct{}
	done chan struct{}
}

// NewScheduler creates a scheduler firing every interval.
func NewScheduler(service *Service, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		service:  service,
		interval: interval,
		logger:   logger.Named("scheduler"),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the scheduler loop in a goroutine. The first run fires
// after one full interval, not at startup.
func (s *Scheduler) Start() {
	go s.loop()
	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
}

// Stop halts the loop and waits for it to exit. A run already in progress
// is not interrupted.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.fire()
		}
	}
}

// fire runs one scheduled reconciliation. Every outcome is absorbed here so
// a bad run can never take the loop down.
func (s *Scheduler) fire() {
	result, err := s.service.TriggerRun(context.Background())
	switch {
	case errors.Is(err, engine.ErrRunInProgress):
		s.logger.Warn("Scheduled run skipped, another run is in progress")
	case err != nil:
		s.logger.Error("Scheduled run failed", zap.Error(err))
	default:
		s.logger.Info("Scheduled run completed",
			zap.String("run_id", result.RunID),
			zap.String("status", string(result.Status)),
			zap.Int("processed", result.Statistics.TotalProcessed),
		)
	}
}
