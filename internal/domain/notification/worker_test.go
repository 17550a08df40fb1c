package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"pipenotify/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerRecordsEachDelivery(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	provider := &captureProvider{channel: ChannelSlack}
	st := &fakeStore{}
	w := NewWorker(NewDispatcher(SamplePipeline(fixed), provider), st)
	w.now = func() time.Time { return fixed }

	err := w.ProcessTask(context.Background(), &DispatchStagePayload{DispatchID: "d-1", Stage: "Build"})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, provider.ids())
	require.Len(t, st.logs, 2)

	first := st.logs[0]
	assert.Equal(t, "d-1", first.DispatchID)
	assert.Equal(t, "My Pipeline", first.Pipeline)
	assert.Equal(t, "Build", first.Stage)
	assert.Equal(t, 1, first.NotificationID)
	assert.Equal(t, "Build successful", first.Message)
	assert.Equal(t, SeverityInfo, first.Severity)
	assert.Equal(t, "slack", first.Channel)
	assert.Equal(t, StatusSent, first.Status)
	require.NotNil(t, first.SentAt)
	assert.True(t, fixed.Equal(*first.SentAt))

	assert.Equal(t, SeverityError, st.logs[1].Severity)
}

func TestWorkerRecordsFailures(t *testing.T) {
	provider := &captureProvider{failIDs: map[int]bool{3: true}}
	st := &fakeStore{}
	w := NewWorker(NewDispatcher(SamplePipeline(time.Now()), provider), st)

	err := w.ProcessTask(context.Background(), &DispatchStagePayload{DispatchID: "d-2", Stage: "Deploy"})
	var derr *common.DeliveryError
	require.ErrorAs(t, err, &derr)

	require.Len(t, st.logs, 1)
	assert.Equal(t, StatusFailed, st.logs[0].Status)
	assert.Equal(t, "boom 3", st.logs[0].ErrorMessage)
	assert.Nil(t, st.logs[0].SentAt)
}

func TestWorkerUnknownStage(t *testing.T) {
	provider := &captureProvider{}
	w := NewWorker(NewDispatcher(SamplePipeline(time.Now()), provider), &fakeStore{})

	err := w.ProcessTask(context.Background(), &DispatchStagePayload{DispatchID: "d-3", Stage: "Test"})
	var nf *common.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Empty(t, provider.ids())
}

func TestWorkerStoreFailureDoesNotStopDelivery(t *testing.T) {
	provider := &captureProvider{}
	st := &fakeStore{err: errors.New("db down")}
	w := NewWorker(NewDispatcher(SamplePipeline(time.Now()), provider), st)

	require.NoError(t, w.ProcessTask(context.Background(), &DispatchStagePayload{DispatchID: "d-4", Stage: "Build"}))
	assert.Equal(t, []int{1, 2}, provider.ids())
}

func TestDispatchStageTaskRoundTrip(t *testing.T) {
	task, err := NewDispatchStageTask("d-5", "Deploy")
	require.NoError(t, err)
	assert.Equal(t, TaskTypeDispatchStage, task.Type())

	payload, err := ParseDispatchStagePayload(task.Payload())
	require.NoError(t, err)
	assert.Equal(t, "d-5", payload.DispatchID)
	assert.Equal(t, "Deploy", payload.Stage)
}

func TestParseDispatchStagePayloadRejectsBadInput(t *testing.T) {
	_, err := ParseDispatchStagePayload([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseDispatchStagePayload([]byte(`{"dispatch_id":"x"}`))
	assert.Error(t, err)
}
