package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/medops-hub/workorder-service/internal/events"
)

// NotificationWorker decouples event publication from notification delivery:
// publishers enqueue without blocking and a pool of goroutines drains the queue.
type NotificationWorker struct {
	handle  events.EventHandler
	logger  *zap.Logger
	queue   chan events.Event
	workers int

	mu        sync.Mutex
	isRunning bool
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewNotificationWorker creates the worker around handle.
func NewNotificationWorker(handle events.EventHandler, queueSize, workers int, logger *zap.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}
	return &NotificationWorker{
		handle:  handle,
		logger:  logger,
		queue:   make(chan events.Event, queueSize),
		workers: workers,
	}
}

// Register subscribes the worker to every workflow event.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventWorkOrderReported, w.Enqueue)
	dispatcher.Subscribe(events.EventWorkOrderTransitioned, w.Enqueue)
}

// Enqueue queues event for delivery. It never blocks: a full queue drops the event.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("work_order_id", event.WorkOrderID))
	}
	return nil
}

// Start launches the delivery goroutines.
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return fmt.Errorf("%s is already running", w.Name())
	}
	w.ctx, w.cancel = context.WithCancel(context.WithoutCancel(ctx))
	w.isRunning = true
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.drain()
	}
	w.logger.Info("NotificationWorker started", zap.Int("workers", w.workers), zap.Int("queue_size", cap(w.queue)))
	return nil
}

// Stop closes the queue and waits for queued events to be delivered.
// Enqueue must not be called after Stop.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.mu.Unlock()

	close(w.queue)
	w.wg.Wait()
	w.cancel()
	w.logger.Info("NotificationWorker stopped")
}

// Name returns the worker name for identification.
func (w *NotificationWorker) Name() string {
	return "NotificationWorker"
}

func (w *NotificationWorker) drain() {
	defer w.wg.Done()
	for event := range w.queue {
		if err := w.handle(w.ctx, event); err != nil {
			w.logger.Warn("notification handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("work_order_id", event.WorkOrderID),
				zap.Error(err))
		}
	}
}
