package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GSH-LAN/Unwindia_cricket/src/database"
	"github.com/GSH-LAN/Unwindia_cricket/src/messagequeue"
	"github.com/GSH-LAN/Unwindia_cricket/src/models"
	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/semaphore"
)

const DefaultMaxPublishAttempts = 10

// Worker publishes the outbox events written by scoring transactions.
type Worker struct {
	ctx         context.Context
	dbClient    database.DatabaseClient
	publisher   message.Publisher
	semaphore   *semaphore.Weighted
	topic       string
	batchSize   int64
	maxAttempts int
}

func NewWorker(ctx context.Context, db database.DatabaseClient, publisher message.Publisher, topic string, batchSize int64, maxAttempts int) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPublishAttempts
	}
	w := Worker{
		ctx:         ctx,
		dbClient:    db,
		publisher:   publisher,
		semaphore:   semaphore.NewWeighted(int64(1)),
		topic:       topic,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
	return &w
}

// StartWorker processes the outbox every interval until the worker's context is done, which is a
// regular shutdown and returns nil.
func (w *Worker) StartWorker(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("outbox process interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			go w.process()
		case <-w.ctx.Done():
			return nil
		}
	}
}

// process is the ticker routine that publishes pending events, oldest first. It stops at the
// first failure so a match's events are never published out of order.
func (w *Worker) process() {
	if !w.semaphore.TryAcquire(1) {
		slog.Debug("Skip processing, semaphore already acquired")
		return
	}
	defer w.semaphore.Release(1)

	events, err := w.dbClient.ListEvents(w.ctx, models.EVENT_STATE_NEW, w.batchSize)
	if err != nil {
		slog.Error("error retrieving outbox events from database", "Error", err)
		return
	}
	if len(events) == 0 {
		return
	}
	slog.Debug("start outbox processing", "events", len(events))

	for _, event := range events {
		if w.ctx.Err() != nil {
			return
		}
		if err = w.publish(event); err != nil {
			slog.Error("error publishing event", "Error", err, "Event", event.EventID, "Type", event.Type, "Attempts", event.Attempts)
			if event.State == models.EVENT_STATE_NEW {
				return
			}
		}
	}

	slog.Debug("finished outbox processing")
}

// publish sends event and records the outcome on the stored event. Events that keep failing are
// marked failed after maxAttempts tries.
func (w *Worker) publish(event *models.Event) error {
	payload, err := messagequeue.NewEventMessage(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.Metadata.Set(messagequeue.MetadataMatchID, event.MatchID.Hex())
	msg.Metadata.Set(messagequeue.MetadataEventType, string(event.Type))

	event.Attempts++
	publishErr := w.publisher.Publish(w.topic, msg)
	if publishErr != nil {
		final := event.Attempts >= w.maxAttempts
		if final {
			event.State = models.EVENT_STATE_FAILED
		}
		outboxFailures.WithLabelValues(boolLabel(final)).Inc()
	} else {
		now := time.Now().UTC()
		event.State = models.EVENT_STATE_PUBLISHED
		event.PublishedAt = &now
		outboxPublished.Inc()
	}

	if err = w.dbClient.UpdateEvent(w.ctx, event); err != nil {
		slog.Error("error updating event", "Error", err, "Event", event.EventID)
		if publishErr == nil {
			return err
		}
	}
	return publishErr
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
