package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/metrics"
)

const (
	dequeueBlock     = 5 * time.Second
	staleClaimEvery  = 30 * time.Second
	staleMinIdle     = time.Minute
	monitorEvery     = 30 * time.Second
	dequeueErrorWait = time.Second
)

// ActivityQueue is the consumer side of the activity stream.
type ActivityQueue interface {
	CreateConsumerGroup(ctx context.Context) error
	Dequeue(ctx context.Context, consumer string, blockTime time.Duration) (*common.ActivityQueueItem, string, error)
	Ack(ctx context.Context, messageID string) error
	ClaimStale(ctx context.Context, consumer string, minIdle time.Duration) ([]*common.ActivityQueueItem, []string, error)
	Length(ctx context.Context) (int64, error)
	PendingCount(ctx context.Context) (int64, error)
}

// ActivityProcessor scores one message.
type ActivityProcessor interface {
	ProcessActivity(ctx context.Context, ev engine.ActivityEvent) (*engine.AwardResult, error)
}

// ActivityQueueWorker drains queued chat messages into the award engine.
type ActivityQueueWorker struct {
	workerID  string
	queue     ActivityQueue
	processor ActivityProcessor
	metrics   *metrics.MetricsRegistry
}

func NewActivityQueueWorker(workerID string, queue ActivityQueue, processor ActivityProcessor, m *metrics.MetricsRegistry) *ActivityQueueWorker {
	return &ActivityQueueWorker{
		workerID:  workerID,
		queue:     queue,
		processor: processor,
		metrics:   m,
	}
}

// Start runs numWorkers consumers, a stale-message claimer and a depth monitor
// until ctx is cancelled.
func (w *ActivityQueueWorker) Start(ctx context.Context, numWorkers int) error {
	if err := w.queue.CreateConsumerGroup(ctx); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	logging.Info("Activity queue workers starting", "workers", numWorkers, "worker_id", w.workerID)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		consumer := fmt.Sprintf("%s-%d", w.workerID, i)
		go func() {
			defer wg.Done()
			w.consume(ctx, consumer)
		}()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		w.claimStale(ctx, w.workerID+"-reclaim")
	}()
	go func() {
		defer wg.Done()
		w.monitor(ctx)
	}()

	wg.Wait()
	logging.Info("Activity queue workers stopped")
	return nil
}

func (w *ActivityQueueWorker) consume(ctx context.Context, consumer string) {
	processed := 0
	for {
		select {
		case <-ctx.Done():
			logging.Info("Activity consumer shutting down", "consumer", consumer, "processed", processed)
			return
		default:
		}

		item, messageID, err := w.queue.Dequeue(ctx, consumer, dequeueBlock)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logging.Warn("Activity dequeue failed", "consumer", consumer, "error", err)
			w.record("dequeue_error")
			time.Sleep(dequeueErrorWait)
			continue
		}
		if item == nil {
			continue
		}

		w.Handle(ctx, item, messageID)
		processed++
	}
}

// Handle scores one queued message and acknowledges it unless the failure is
// retryable, in which case it stays pending for the stale claimer.
// It reports whether the message was acknowledged.
func (w *ActivityQueueWorker) Handle(ctx context.Context, item *common.ActivityQueueItem, messageID string) bool {
	length, visible := engine.MessageLengths(item.Content)
	_, err := w.processor.ProcessActivity(ctx, engine.ActivityEvent{
		UserID:        item.UserID,
		MessageLength: length,
		VisibleLength: visible,
		Timestamp:     item.ReceivedAt,
		ChannelID:     item.ChannelID,
		HasBonusRole:  item.HasBonusRole,
		RoleNames:     item.RoleNames,
	})

	outcome := "awarded"
	if err != nil {
		var le *engine.LedgerError
		if errors.As(err, &le) && le.Retryable() {
			logging.Warn("Activity processing will be retried", "message_id", messageID, "user_id", item.UserID, "error", err)
			w.record("retry")
			return false
		}
		outcome = engine.CodeOf(err)
		if outcome == "" {
			outcome = "error"
			logging.Error("Activity processing failed", "message_id", messageID, "user_id", item.UserID, "error", err)
		}
	}

	if err := w.queue.Ack(ctx, messageID); err != nil {
		logging.Error("Failed to ack activity message", "message_id", messageID, "error", err)
	}
	w.record(outcome)
	return true
}

func (w *ActivityQueueWorker) claimStale(ctx context.Context, consumer string) {
	ticker := time.NewTicker(staleClaimEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			items, ids, err := w.queue.ClaimStale(ctx, consumer, staleMinIdle)
			if err != nil {
				logging.Warn("Failed to claim stale activity messages", "error", err)
				continue
			}
			for i, item := range items {
				w.Handle(ctx, item, ids[i])
			}
			if len(items) > 0 {
				logging.Info("Reprocessed stale activity messages", "count", len(items))
			}
		}
	}
}

func (w *ActivityQueueWorker) monitor(ctx context.Context) {
	ticker := time.NewTicker(monitorEvery)
	defer ticker.Stop()

	for {
		w.observeDepth(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *ActivityQueueWorker) observeDepth(ctx context.Context) {
	if w.metrics == nil {
		return
	}
	if length, err := w.queue.Length(ctx); err == nil {
		w.metrics.QueueDepth.WithLabelValues("length").Set(float64(length))
	}
	if pending, err := w.queue.PendingCount(ctx); err == nil {
		w.metrics.QueueDepth.WithLabelValues("pending").Set(float64(pending))
	}
}

func (w *ActivityQueueWorker) record(outcome string) {
	if w.metrics != nil {
		w.metrics.QueueMessagesTotal.WithLabelValues(outcome).Inc()
	}
}
