package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/medops-hub/workorder-service/internal/persistence"
	"github.com/medops-hub/workorder-service/internal/service"
)

const sweepLockName = "auto-close-sweep"

// Sweeper runs one auto-close pass.
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

// SweepLocker serializes sweeps across replicas.
type SweepLocker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (*persistence.Lease, error)
}

// AutoCloseWorker periodically auto-closes work orders whose closure window elapsed.
type AutoCloseWorker struct {
	sweeper  Sweeper
	locker   SweepLocker
	logger   *zap.Logger
	interval time.Duration

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewAutoCloseWorker creates the worker. locker may be nil for single-replica deployments.
func NewAutoCloseWorker(sweeper Sweeper, locker SweepLocker, interval time.Duration, logger *zap.Logger) *AutoCloseWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &AutoCloseWorker{
		sweeper:  sweeper,
		locker:   locker,
		logger:   logger,
		interval: interval,
	}
}

// Start launches the sweep loop.
func (w *AutoCloseWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("%s is already running", w.Name())
	}
	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("AutoCloseWorker started", zap.Duration("interval", w.interval))
	go w.loop(loopCtx, w.done)
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to return.
func (w *AutoCloseWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
	w.logger.Info("AutoCloseWorker stopped")
}

// Name returns the worker name for identification.
func (w *AutoCloseWorker) Name() string {
	return "AutoCloseWorker"
}

func (w *AutoCloseWorker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single locked sweep. It reports whether the sweep ran.
func (w *AutoCloseWorker) RunOnce(ctx context.Context) bool {
	if w.locker != nil {
		lease, err := w.locker.Acquire(ctx, sweepLockName, w.interval)
		if errors.Is(err, persistence.ErrLockHeld) {
			w.logger.Debug("auto-close sweep held by another replica")
			return false
		}
		if err != nil {
			// Redis being down must not stop closures; duplicate sweeps are safe.
			w.logger.Warn("sweep lock unavailable, sweeping without it", zap.Error(err))
		}
		defer func() {
			if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
				w.logger.Warn("release sweep lock", zap.Error(err))
			}
		}()
	}

	res, err := w.sweeper.Sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("auto-close sweep failed", zap.Error(err))
		}
		return true
	}
	w.logger.Debug("auto-close sweep", zap.Int("closed", res.Closed), zap.Int("conflicts", res.Conflicts))
	return true
}
