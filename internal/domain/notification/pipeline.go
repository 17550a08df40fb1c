package notification

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"pipenotify/internal/common"
)

// Stage is a named pipeline phase holding a fixed list of notifications.
// The list is set at construction and never mutated afterwards.
type Stage struct {
	name          string
	notifications []Notification
}

// NewStage creates a stage. The notifications slice is copied.
func NewStage(name string, notifications ...Notification) (*Stage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("stage name is required")
	}
	return &Stage{
		name:          name,
		notifications: slices.Clone(notifications),
	}, nil
}

// Name returns the stage name.
func (s *Stage) Name() string {
	return s.name
}

// Notifications returns a copy of the stage's notifications in list order.
func (s *Stage) Notifications() []Notification {
	return slices.Clone(s.notifications)
}

// Len returns the number of notifications in the stage.
func (s *Stage) Len() int {
	return len(s.notifications)
}

type stageJSON struct {
	Name          string         `json:"name"`
	Notifications []Notification `json:"notifications"`
}

func (s *Stage) MarshalJSON() ([]byte, error) {
	notifs := s.notifications
	if notifs == nil {
		notifs = []Notification{}
	}
	return json.Marshal(stageJSON{Name: s.name, Notifications: notifs})
}

// Pipeline is an ordered sequence of stages defined once at startup.
type Pipeline struct {
	name   string
	stages []*Stage
}

// NewPipeline creates a pipeline. Stage names must be unique.
func NewPipeline(name string, stages ...*Stage) (*Pipeline, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("pipeline name is required")
	}

	seen := make(map[string]bool, len(stages))
	for _, st := range stages {
		if st == nil {
			return nil, common.NewValidationError("pipeline stage must not be nil")
		}
		if seen[st.name] {
			return nil, common.NewValidationError(fmt.Sprintf("duplicate stage name: %s", st.name))
		}
		seen[st.name] = true
	}

	return &Pipeline{
		name:   name,
		stages: slices.Clone(stages),
	}, nil
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// Stages returns the stages in pipeline order.
func (p *Pipeline) Stages() []*Stage {
	return slices.Clone(p.stages)
}

// Stage looks up a stage by name.
func (p *Pipeline) Stage(name string) (*Stage, error) {
	for _, st := range p.stages {
		if st.name == name {
			return st, nil
		}
	}
	return nil, common.NewNotFoundError("stage", name)
}

type pipelineJSON struct {
	Name   string   `json:"name"`
	Stages []*Stage `json:"stages"`
}

func (p *Pipeline) MarshalJSON() ([]byte, error) {
	stages := p.stages
	if stages == nil {
		stages = []*Stage{}
	}
	return json.Marshal(pipelineJSON{Name: p.name, Stages: stages})
}

// SamplePipeline returns the built-in demo pipeline: a Build stage with a success
// and a failure notice followed by a Deploy stage with a single success notice.
func SamplePipeline(now time.Time) *Pipeline {
	build := &Stage{
		name: "Build",
		notifications: []Notification{
			{ID: 1, Message: "Build successful", Severity: SeverityInfo, Timestamp: now},
			{ID: 2, Message: "Build failed", Severity: SeverityError, Timestamp: now},
		},
	}
	deploy := &Stage{
		name: "Deploy",
		notifications: []Notification{
			{ID: 3, Message: "Deploy successful", Severity: SeverityInfo, Timestamp: now},
		},
	}
	return &Pipeline{name: "My Pipeline", stages: []*Stage{build, deploy}}
}
