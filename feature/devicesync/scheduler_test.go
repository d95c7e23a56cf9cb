package devicesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"device-sync/feature/devicesync/engine"
	"device-sync/feature/devicesync/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingRunner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingRunner) Run(ctx context.Context) (*models.RunResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &models.RunResult{RunID: "scheduled", Status: models.StatusSuccess}, nil
}

func (c *countingRunner) State() engine.State { return engine.StateIdle }

func (c *countingRunner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestScheduler_FiresOnInterval(t *testing.T) {
	runner := &countingRunner{}
	svc := NewService(runner, &fakeMeta{}, zap.NewNop())
	s := NewScheduler(svc, 10*time.Millisecond, zap.NewNop())

	s.Start()
	assert.Eventually(t, func() bool {
		return runner.count() >= 2
	}, time.Second, time.Millisecond)
	s.Stop()
}

func TestScheduler_StopHaltsTheLoop(t *testing.T) {
	runner := &countingRunner{}
	svc := NewService(runner, &fakeMeta{}, zap.NewNop())
	s := NewScheduler(svc, 5*time.Millisecond, zap.NewNop())

	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	settled := runner.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, runner.count(), "no runs after Stop")
}

func TestScheduler_AbsorbsRunFailures(t *testing.T) {
	runner := &countingRunner{err: errors.New("fetch failed")}
	svc := NewService(runner, &fakeMeta{}, zap.NewNop())
	s := NewScheduler(svc, 5*time.Millisecond, zap.NewNop())

	s.Start()
	// The loop must keep firing after failures.
	assert.Eventually(t, func() bool {
		return runner.count() >= 3
	}, time.Second, time.Millisecond)
	s.Stop()
}

func TestScheduler_AbsorbsInProgress(t *testing.T) {
	runner := &countingRunner{err: engine.ErrRunInProgress}
	svc := NewService(runner, &fakeMeta{}, zap.NewNop())
	s := NewScheduler(svc, 5*time.Millisecond, zap.NewNop())

	s.Start()
	assert.Eventually(t, func() bool {
		return runner.count() >= 2
	}, time.Second, time.Millisecond)
	s.Stop()
}
