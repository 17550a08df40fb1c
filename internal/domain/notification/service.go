package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pipenotify/internal/common"

	"github.com/google/uuid"
)

// Enqueuer defines the contract for enqueuing stage dispatch tasks.
// This allows the service to be decoupled from the specific queue implementation.
type Enqueuer interface {
	EnqueueDispatchStage(dispatchID, stage string) error
}

// Service orchestrates the API side of dispatching:
// resolve stage → check idempotency key → enqueue.
type Service struct {
	pipeline       *Pipeline
	channel        Channel
	enqueuer       Enqueuer
	store          DeliveryStore
	guard          IdempotencyGuard
	idempotencyTTL time.Duration
	newID          func() string
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithIdempotencyGuard enables Idempotency-Key handling on dispatch requests.
func WithIdempotencyGuard(guard IdempotencyGuard, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.guard = guard
		s.idempotencyTTL = ttl
	}
}

// NewService creates a new dispatch service. store may be nil when the worker's
// delivery history is not reachable from this process.
func NewService(pipeline *Pipeline, channel Channel, enqueuer Enqueuer, store DeliveryStore, opts ...ServiceOption) *Service {
	s := &Service{
		pipeline:       pipeline,
		channel:        channel,
		enqueuer:       enqueuer,
		store:          store,
		idempotencyTTL: 24 * time.Hour,
		newID:          func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pipeline returns the pipeline served by this service.
func (s *Service) Pipeline() *Pipeline {
	return s.pipeline
}

// Status reports the pipeline, the delivery channel and whether delivery
// history can be listed from this process.
func (s *Service) Status() ServiceStatus {
	return ServiceStatus{
		Status:          "ok",
		Service:         "pipenotify",
		Pipeline:        s.pipeline.Name(),
		Stages:          len(s.pipeline.Stages()),
		Channel:         string(s.channel),
		DeliveryHistory: s.store != nil,
	}
}

// GetStage retrieves a stage by name.
func (s *Service) GetStage(name string) (*Stage, error) {
	return s.pipeline.Stage(name)
}

// Dispatch validates the stage, honours the idempotency key when present,
// and enqueues the stage for asynchronous delivery.
func (s *Service) Dispatch(ctx context.Context, stageName, idempotencyKey string) (*DispatchResponse, error) {
	if _, err := s.pipeline.Stage(stageName); err != nil {
		return nil, err
	}

	dispatchID := s.newID()

	if idempotencyKey != "" && s.guard != nil {
		rec := DispatchRecord{DispatchID: dispatchID, Stage: stageName}
		existing, claimed, err := s.guard.Claim(ctx, idempotencyKey, rec, s.idempotencyTTL)
		if err != nil {
			slog.Error("idempotency check failed", "key", idempotencyKey, "error", err)
			// Proceed without idempotency protection when Redis is unavailable
		} else if !claimed {
			if existing.Stage != stageName {
				return nil, common.NewConflictError(fmt.Sprintf(
					"idempotency key %q was already used to dispatch stage %s", idempotencyKey, existing.Stage))
			}
			slog.Info("idempotent request, returning existing dispatch",
				"idempotency_key", idempotencyKey,
				"existing_id", existing.DispatchID,
				"stage", existing.Stage,
			)
			return &DispatchResponse{
				DispatchID:     existing.DispatchID,
				IdempotencyKey: idempotencyKey,
				Stage:          existing.Stage,
				Channel:        string(s.channel),
				Status:         string(StatusQueued),
			}, nil
		}
	}

	if err := s.enqueuer.EnqueueDispatchStage(dispatchID, stageName); err != nil {
		if idempotencyKey != "" && s.guard != nil {
			if relErr := s.guard.Release(ctx, idempotencyKey); relErr != nil {
				slog.Error("failed to release idempotency key", "key", idempotencyKey, "error", relErr)
			}
		}
		return nil, fmt.Errorf("enqueuing dispatch: %w", err)
	}

	slog.Info("stage dispatch enqueued",
		"dispatch_id", dispatchID,
		"stage", stageName,
		"channel", s.channel,
	)

	return &DispatchResponse{
		DispatchID:     dispatchID,
		IdempotencyKey: idempotencyKey,
		Stage:          stageName,
		Channel:        string(s.channel),
		Status:         string(StatusQueued),
	}, nil
}

// ListDeliveries retrieves delivery logs with pagination and filtering.
// It fails with UnavailableError when the service has no shared delivery store.
func (s *Service) ListDeliveries(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	if s.store == nil {
		return nil, common.NewUnavailableError("delivery history is not available: no shared delivery store is configured")
	}

	if filter.Channel != "" && !IsValidChannel(Channel(filter.Channel)) {
		return nil, common.NewValidationError(fmt.Sprintf("unsupported channel: %s", filter.Channel))
	}

	filter = filter.Normalize()

	logs, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}

	return &ListResponse{
		Deliveries: logs,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}
