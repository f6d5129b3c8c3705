package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingBusinessID   = errors.New("business id is required")
	ErrMissingBusinessName = errors.New("business name is required")
	ErrInvalidTransition   = errors.New("invalid task status transition")
)

// AgentKind selects which generation pipeline a build runs through.
type AgentKind string

const (
	AgentWebsite   AgentKind = "website"
	AgentContent   AgentKind = "content"
	AgentMarketing AgentKind = "marketing"
)

func ValidAgentKind(kind AgentKind) bool {
	switch kind {
	case AgentWebsite, AgentContent, AgentMarketing:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskQueued    TaskStatus = "queued"
	TaskBuilding  TaskStatus = "building"
	TaskCompleted TaskStatus = "completed"
	TaskError     TaskStatus = "error"
	TaskPaused    TaskStatus = "paused"
)

// taskTransitions encodes the full lifecycle. completed and error have no
// outgoing edges; paused can only re-enter building.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskQueued:   {TaskBuilding},
	TaskBuilding: {TaskCompleted, TaskError, TaskPaused},
	TaskPaused:   {TaskBuilding},
}

// CanTransition reports whether the status machine allows from -> to.
func CanTransition(from, to TaskStatus) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status has no outgoing transitions.
func (s TaskStatus) Terminal() bool {
	return len(taskTransitions[s]) == 0
}

// BuildingTask tracks one in-flight or finished generation run. Exactly one
// task exists per (business id, agent kind) pair; starting a new build for
// the pair reuses the record. Every transition is persisted so a restart can
// recover in-flight and finished state.
type BuildingTask struct {
	ID           string     `json:"id"`
	BusinessID   string     `json:"business_id"`
	BusinessName string     `json:"business_name"`
	Agent        AgentKind  `json:"agent_type"`
	Status       TaskStatus `json:"status"`
	Progress     int        `json:"progress"`
	CurrentStep  string     `json:"current_step"`
	StartedAt    time.Time  `json:"started_at"`
	EstimatedEnd *time.Time `json:"estimated_completion,omitempty"`
	ArtifactID   string     `json:"artifact_id,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskKey identifies the one live task slot for a business/agent pair.
func TaskKey(businessID string, agent AgentKind) string {
	return businessID + "/" + string(agent)
}

// Transition moves the task to the requested status, enforcing the machine.
func (t *BuildingTask) Transition(to TaskStatus) error {
	if !CanTransition(t.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, to)
	}
	t.Status = to
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// AdvanceProgress raises progress to the checkpoint value. Progress is
// informational only and never moves backwards while building.
func (t *BuildingTask) AdvanceProgress(value int, step string) {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	if value > t.Progress {
		t.Progress = value
	}
	if step != "" {
		t.CurrentStep = step
	}
	t.UpdatedAt = time.Now().UTC()
}
