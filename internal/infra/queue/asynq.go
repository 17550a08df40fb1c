package queue

import (
	"context"
	"fmt"

	"pipenotify/internal/domain/notification"

	"github.com/hibiken/asynq"
)

// QueueName is the asynq queue stage dispatches are placed on.
const QueueName = "dispatch"

// RedisOpt builds asynq connection options.
func RedisOpt(redisAddr, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	}
}

// NewClient creates a new asynq client connected to Redis.
func NewClient(redisAddr, password string, db int) *asynq.Client {
	return asynq.NewClient(RedisOpt(redisAddr, password, db))
}

// NewServer creates a new asynq server connected to Redis.
// Failed dispatches are not retried; tasks are enqueued with MaxRetry(0).
func NewServer(redisAddr, password string, db int, concurrency int) *asynq.Server {
	return asynq.NewServer(
		RedisOpt(redisAddr, password, db),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueName: 10, // priority weight
				"default": 1,
			},
		},
	)
}

// NewServeMux registers the dispatch task handler on a fresh mux.
func NewServeMux(worker *notification.Worker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TaskTypeDispatchStage, func(ctx context.Context, task *asynq.Task) error {
		payload, err := notification.ParseDispatchStagePayload(task.Payload())
		if err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return worker.ProcessTask(ctx, payload)
	})
	return mux
}

// Enqueuer adapts the asynq client to the notification.Enqueuer interface.
type Enqueuer struct {
	client *asynq.Client
}

var _ notification.Enqueuer = (*Enqueuer)(nil)

// NewEnqueuer wraps an asynq client.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueDispatchStage enqueues a dispatch stage task.
func (e *Enqueuer) EnqueueDispatchStage(dispatchID, stage string) error {
	task, err := notification.NewDispatchStageTask(dispatchID, stage)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}

	_, err = e.client.Enqueue(task,
		asynq.MaxRetry(0),
		asynq.Queue(QueueName),
		asynq.TaskID(dispatchID),
	)
	if err != nil {
		return fmt.Errorf("enqueuing task: %w", err)
	}

	return nil
}
