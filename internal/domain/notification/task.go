package notification

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskTypeDispatchStage is the asynq task type for dispatching one stage.
const TaskTypeDispatchStage = "stage:dispatch"

// DispatchStagePayload is the serialized payload for a dispatch stage task.
type DispatchStagePayload struct {
	DispatchID string `json:"dispatch_id"`
	Stage      string `json:"stage"`
}

// NewDispatchStageTask creates a new asynq task for dispatching a stage.
func NewDispatchStageTask(dispatchID, stage string) (*asynq.Task, error) {
	payload, err := json.Marshal(DispatchStagePayload{DispatchID: dispatchID, Stage: stage})
	if err != nil {
		return nil, fmt.Errorf("marshaling task payload: %w", err)
	}
	return asynq.NewTask(TaskTypeDispatchStage, payload), nil
}

// ParseDispatchStagePayload deserializes the task payload.
func ParseDispatchStagePayload(data []byte) (*DispatchStagePayload, error) {
	var p DispatchStagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling task payload: %w", err)
	}
	if p.Stage == "" {
		return nil, fmt.Errorf("task payload missing stage")
	}
	return &p, nil
}
