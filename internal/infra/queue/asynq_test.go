package queue

import (
	"bytes"
	"context"
	"testing"
	"time"

	"pipenotify/internal/domain/notification"
	"pipenotify/internal/infra/console"
	"pipenotify/internal/infra/store"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeMuxDispatchesStage(t *testing.T) {
	var out bytes.Buffer
	deliveries := store.NewMemoryStore()
	d := notification.NewDispatcher(notification.SamplePipeline(time.Now()), console.NewEmailService(&out))
	mux := NewServeMux(notification.NewWorker(d, deliveries))

	task, err := notification.NewDispatchStageTask("d-1", "Build")
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))

	assert.Equal(t,
		"Sending email notification: Build successful with severity info\n"+
			"Sending email notification: Build failed with severity error\n",
		out.String())

	logs, total, err := deliveries.List(context.Background(), notification.ListFilter{DispatchID: "d-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, logs[0].NotificationID)
}

func TestServeMuxSkipsRetryOnBadPayload(t *testing.T) {
	d := notification.NewDispatcher(notification.SamplePipeline(time.Now()), console.NewEmailService(&bytes.Buffer{}))
	mux := NewServeMux(notification.NewWorker(d, store.NewMemoryStore()))

	err := mux.ProcessTask(context.Background(), asynq.NewTask(notification.TaskTypeDispatchStage, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
