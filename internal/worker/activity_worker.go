// Package worker turns queued activity messages into rows of the activity
// log spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"badyet/internal/amqp"
	"badyet/internal/sheets"
)

// ActivityWorker consumes activity messages and appends them to an
// ActivityWriter. It keeps simple counters so the health endpoint of the
// worker process can report progress.
type ActivityWorker struct {
	writer sheets.ActivityWriter

	processed atomic.Int64
	failed    atomic.Int64
}

func NewActivityWorker(writer sheets.ActivityWriter) *ActivityWorker {
	return &ActivityWorker{writer: writer}
}

// HandleActivityMessage processes a single activity message from the queue.
// A returned error makes the consumer requeue the delivery.
func (w *ActivityWorker) HandleActivityMessage(ctx context.Context, msg *amqp.ActivityMessage) error {
	if msg.Event == "" {
		w.failed.Add(1)
		return fmt.Errorf("activity message without event")
	}

	ref, err := w.writer.Append(ctx, sheets.ActivityRow{
		At:          msg.Timestamp,
		Event:       msg.Event,
		Kind:        msg.Kind,
		UserEmail:   msg.UserEmail,
		Title:       msg.Title,
		Description: msg.Description,
	})
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("append activity row: %w", err)
	}

	w.processed.Add(1)
	slog.InfoContext(ctx, "Appended activity row",
		"event", msg.Event,
		"sheets_ref", ref)
	return nil
}

// Run consumes the queue until ctx is cancelled.
func (w *ActivityWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeActivity(ctx, func(msg *amqp.ActivityMessage) error {
		return w.HandleActivityMessage(ctx, msg)
	})
}

// Stats reports how many messages were appended and how many failed.
func (w *ActivityWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}
