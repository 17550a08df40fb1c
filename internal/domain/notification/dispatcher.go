package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pipenotify/internal/common"
)

// Dispatcher pushes the notifications of a pipeline's stages to a single provider.
// It holds no mutable state, so repeated dispatches of a stage produce identical output.
type Dispatcher struct {
	pipeline *Pipeline
	provider Provider
}

// NewDispatcher creates a dispatcher for the given pipeline and provider.
func NewDispatcher(pipeline *Pipeline, provider Provider) *Dispatcher {
	return &Dispatcher{
		pipeline: pipeline,
		provider: provider,
	}
}

// Channel returns the channel of the injected provider.
func (d *Dispatcher) Channel() Channel {
	return d.provider.Channel()
}

// SendNotifications delivers each notification of the stage, in list order.
// A provider failure is logged and does not stop the remaining deliveries;
// all failures are returned joined.
func (d *Dispatcher) SendNotifications(ctx context.Context, stage *Stage) error {
	return d.sendWith(ctx, d.provider, stage)
}

// SendAll dispatches every stage in pipeline order.
func (d *Dispatcher) SendAll(ctx context.Context) error {
	var errs []error
	for _, stage := range d.pipeline.stages {
		if err := d.SendNotifications(ctx, stage); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) sendWith(ctx context.Context, provider Provider, stage *Stage) error {
	start := time.Now()
	channel := provider.Channel()

	var errs []error
	for _, n := range stage.notifications {
		if err := provider.Send(ctx, n); err != nil {
			slog.Error("notification delivery failed",
				"stage", stage.name,
				"notification_id", n.ID,
				"channel", channel,
				"severity", n.Severity,
				"error", err,
			)
			errs = append(errs, common.NewDeliveryError(string(channel), n.ID, err))
		}
	}

	slog.Debug("stage dispatched",
		"stage", stage.name,
		"channel", channel,
		"count", len(stage.notifications),
		"failed", len(errs),
		"duration", time.Since(start),
	)

	return errors.Join(errs...)
}
