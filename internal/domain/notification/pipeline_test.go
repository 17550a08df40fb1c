package notification

import (
	"encoding/json"
	"testing"
	"time"

	"pipenotify/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplePipelineShape(t *testing.T) {
	now := time.Now()
	p := SamplePipeline(now)

	assert.Equal(t, "My Pipeline", p.Name())
	stages := p.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, "Build", stages[0].Name())
	assert.Equal(t, "Deploy", stages[1].Name())

	build := stages[0].Notifications()
	require.Len(t, build, 2)
	assert.Equal(t, Notification{ID: 1, Message: "Build successful", Severity: SeverityInfo, Timestamp: now}, build[0])
	assert.Equal(t, Notification{ID: 2, Message: "Build failed", Severity: SeverityError, Timestamp: now}, build[1])

	deploy := stages[1].Notifications()
	require.Len(t, deploy, 1)
	assert.Equal(t, "Deploy successful", deploy[0].Message)
}

func TestStageListIsFixedAfterConstruction(t *testing.T) {
	input := []Notification{{ID: 1, Message: "a", Severity: SeverityInfo}}
	stage, err := NewStage("Test", input...)
	require.NoError(t, err)

	input[0].Message = "mutated"
	assert.Equal(t, "a", stage.Notifications()[0].Message)

	got := stage.Notifications()
	got[0].Message = "mutated again"
	assert.Equal(t, "a", stage.Notifications()[0].Message)
	assert.Equal(t, 1, stage.Len())
}

func TestNewStageRequiresName(t *testing.T) {
	_, err := NewStage("  ")
	var verr *common.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNewPipelineValidation(t *testing.T) {
	build, err := NewStage("Build")
	require.NoError(t, err)
	dup, err := NewStage("Build")
	require.NoError(t, err)

	var verr *common.ValidationError

	_, err = NewPipeline("", build)
	assert.ErrorAs(t, err, &verr)

	_, err = NewPipeline("CI", build, dup)
	assert.ErrorAs(t, err, &verr)

	_, err = NewPipeline("CI", build, nil)
	assert.ErrorAs(t, err, &verr)

	p, err := NewPipeline("CI", build)
	require.NoError(t, err)
	assert.Len(t, p.Stages(), 1)
}

func TestPipelineStageLookup(t *testing.T) {
	p := SamplePipeline(time.Now())

	st, err := p.Stage("Deploy")
	require.NoError(t, err)
	assert.Equal(t, "Deploy", st.Name())

	_, err = p.Stage("Test")
	var nf *common.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "stage", nf.Resource)
	assert.Equal(t, "Test", nf.ID)
}

func TestPipelineJSON(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := json.Marshal(SamplePipeline(ts))
	require.NoError(t, err)

	var decoded struct {
		Name   string `json:"name"`
		Stages []struct {
			Name          string         `json:"name"`
			Notifications []Notification `json:"notifications"`
		} `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "My Pipeline", decoded.Name)
	require.Len(t, decoded.Stages, 2)
	assert.Equal(t, "Build", decoded.Stages[0].Name)
	assert.Equal(t, SeverityError, decoded.Stages[0].Notifications[1].Severity)
	assert.True(t, ts.Equal(decoded.Stages[1].Notifications[0].Timestamp))
}

func TestEmptyStageJSONUsesEmptyList(t *testing.T) {
	st, err := NewStage("Empty")
	require.NoError(t, err)

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Empty","notifications":[]}`, string(data))
}
