package config

import (
	"errors"
	"fmt"
	"time"

	"pipenotify/internal/domain/notification"
)

// Validate checks settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	var errs []error

	if !notification.IsValidChannel(notification.Channel(c.Delivery.Channel)) {
		errs = append(errs, fmt.Errorf("delivery.channel must be one of email, slack (got %q)", c.Delivery.Channel))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Queue.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("queue.concurrency must be positive: %d", c.Queue.Concurrency))
	}

	return errors.Join(errs...)
}

// DeliveryChannel returns the configured channel as a domain value.
func (c *Config) DeliveryChannel() notification.Channel {
	return notification.Channel(c.Delivery.Channel)
}

// IdempotencyTTL returns how long an Idempotency-Key stays bound to its dispatch.
func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.Idempotency.TTLSec) * time.Second
}

// BuildPipeline converts the configured pipeline into a domain pipeline,
// stamping every notification with now. With no stages configured the
// sample pipeline is returned.
func (c *Config) BuildPipeline(now time.Time) (*notification.Pipeline, error) {
	if len(c.Pipeline.Stages) == 0 {
		return notification.SamplePipeline(now), nil
	}

	stages := make([]*notification.Stage, 0, len(c.Pipeline.Stages))
	for _, sc := range c.Pipeline.Stages {
		notifs := make([]notification.Notification, 0, len(sc.Notifications))
		for _, nc := range sc.Notifications {
			sev, err := notification.ParseSeverity(nc.Severity)
			if err != nil {
				return nil, fmt.Errorf("stage %s notification %d: %w", sc.Name, nc.ID, err)
			}
			n, err := notification.NewNotification(nc.ID, nc.Message, sev, now)
			if err != nil {
				return nil, fmt.Errorf("stage %s notification %d: %w", sc.Name, nc.ID, err)
			}
			notifs = append(notifs, n)
		}

		stage, err := notification.NewStage(sc.Name, notifs...)
		if err != nil {
			return nil, fmt.Errorf("building stage %q: %w", sc.Name, err)
		}
		stages = append(stages, stage)
	}

	pipeline, err := notification.NewPipeline(c.Pipeline.Name, stages...)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}
	return pipeline, nil
}
