package notifier

import (
	"context"
	"time"

	"github.com/azeraturan/spiderfoot/internal/logger"
	"github.com/azeraturan/spiderfoot/internal/storage"
)

// queue is the undelivered-events source the worker drains.
type queue interface {
	ListUndeliveredEvents(limit int) ([]storage.QueuedEvent, error)
	MarkEventDelivered(id int64) error
}

// Worker periodically drains undelivered findings from the queue and
// hands them to the notifier. A finding is marked delivered only after
// a successful notify, so failures are retried on the next tick.
type Worker struct {
	queue    queue
	notifier Notifier
}

func NewWorker(q queue, n Notifier) *Worker {
	return &Worker{queue: q, notifier: n}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	logger.Infof("delivery worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.process()
		}
	}
}

func (w *Worker) process() {
	events, err := w.queue.ListUndeliveredEvents(20)
	if err != nil {
		logger.Errorf("delivery worker fetch error: %v", err)
		return
	}

	for _, e := range events {
		if err := w.notifier.Notify(&e.Event); err != nil {
			logger.Errorf("webhook delivery failed: %v", err)
			continue
		}
		_ = w.queue.MarkEventDelivered(e.ID)
	}
}
