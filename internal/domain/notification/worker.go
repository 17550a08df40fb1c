package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Worker processes stage dispatch tasks from the queue.
// It resolves the stage, runs the dispatcher, and records one delivery log
// per notification handed to the provider.
type Worker struct {
	dispatcher *Dispatcher
	store      DeliveryStore
	now        func() time.Time
}

// NewWorker creates a new dispatch worker.
func NewWorker(dispatcher *Dispatcher, store DeliveryStore) *Worker {
	return &Worker{
		dispatcher: dispatcher,
		store:      store,
		now:        time.Now,
	}
}

// ProcessTask handles a dispatch stage task from the queue.
func (w *Worker) ProcessTask(ctx context.Context, payload *DispatchStagePayload) error {
	start := w.now()

	stage, err := w.dispatcher.pipeline.Stage(payload.Stage)
	if err != nil {
		slog.Error("stage not found", "dispatch_id", payload.DispatchID, "stage", payload.Stage)
		return fmt.Errorf("resolving stage for dispatch %s: %w", payload.DispatchID, err)
	}

	rec := &recordingProvider{
		next:       w.dispatcher.provider,
		store:      w.store,
		now:        w.now,
		dispatchID: payload.DispatchID,
		pipeline:   w.dispatcher.pipeline.name,
		stage:      stage.name,
	}

	if err := w.dispatcher.sendWith(ctx, rec, stage); err != nil {
		slog.Error("stage dispatch finished with failures",
			"dispatch_id", payload.DispatchID,
			"stage", stage.name,
			"channel", rec.Channel(),
			"error", err,
			"duration", time.Since(start),
		)
		return err
	}

	slog.Info("stage dispatched",
		"dispatch_id", payload.DispatchID,
		"stage", stage.name,
		"channel", rec.Channel(),
		"count", stage.Len(),
		"duration", time.Since(start),
	)
	return nil
}

// recordingProvider forwards to the real provider and persists the outcome.
type recordingProvider struct {
	next       Provider
	store      DeliveryStore
	now        func() time.Time
	dispatchID string
	pipeline   string
	stage      string
}

func (r *recordingProvider) Channel() Channel {
	return r.next.Channel()
}

func (r *recordingProvider) Send(ctx context.Context, n Notification) error {
	sendErr := r.next.Send(ctx, n)

	entry := &DeliveryLog{
		DispatchID:     r.dispatchID,
		Pipeline:       r.pipeline,
		Stage:          r.stage,
		NotificationID: n.ID,
		Message:        n.Message,
		Severity:       n.Severity,
		Channel:        string(r.next.Channel()),
		Status:         StatusSent,
	}
	if sendErr != nil {
		entry.Status = StatusFailed
		entry.ErrorMessage = sendErr.Error()
	} else {
		sentAt := r.now().UTC()
		entry.SentAt = &sentAt
	}

	if r.store != nil {
		if err := r.store.Record(ctx, entry); err != nil {
			slog.Error("failed to record delivery",
				"dispatch_id", r.dispatchID,
				"notification_id", n.ID,
				"error", err,
			)
		}
	}

	return sendErr
}
