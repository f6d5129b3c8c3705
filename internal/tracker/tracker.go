package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/policy"
	"github.com/leadforge/leadforge-back/internal/repository"
	"github.com/leadforge/leadforge-back/internal/store"
)

var (
	ErrBuildInFlight = errors.New("a build is already in flight for this business and agent")
	ErrNotCancelable = errors.New("task has no in-flight build to cancel")
)

const cancelledMessage = "build cancelled by user"

// Tracker owns the BuildingTask lifecycle. Every transition goes through
// the domain state machine and is upserted to the repository plus mirrored
// into the durable client-state snapshot, so a restart recovers both
// in-flight and finished builds.
type Tracker struct {
	repo   repository.TasksRepository
	state  *store.StateService
	logger *log.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func New(repo repository.TasksRepository, state *store.StateService, logger *log.Logger) *Tracker {
	return &Tracker{
		repo:    repo,
		state:   state,
		logger:  logger,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Start creates or reuses the task slot for (business id, agent). A pair
// whose task is still building is rejected: the slot is key-exclusive.
func (t *Tracker) Start(
	ctx context.Context,
	business domain.BusinessRecord,
	agent domain.AgentKind,
) (*domain.BuildingTask, error) {
	now := time.Now().UTC()

	existing, err := t.repo.GetTaskByPair(ctx, business.ID, agent)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load task for pair: %w", err)
	}

	task := existing
	if task != nil {
		if task.Status == domain.TaskBuilding || task.Status == domain.TaskQueued {
			return nil, ErrBuildInFlight
		}
		// Terminal or paused: the slot is reused, progress starts over.
		task.Status = domain.TaskQueued
		task.Progress = 0
		task.CurrentStep = "Queued"
		task.StartedAt = now
		task.EstimatedEnd = nil
		task.ArtifactID = ""
		task.ErrorMessage = ""
		task.UpdatedAt = now
	} else {
		task = &domain.BuildingTask{
			ID:           uuid.NewString(),
			BusinessID:   business.ID,
			BusinessName: business.Name,
			Agent:        agent,
			Status:       domain.TaskQueued,
			Progress:     0,
			CurrentStep:  "Queued",
			StartedAt:    now,
			UpdatedAt:    now,
		}
	}

	if err := t.persist(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// BeginBuilding moves queued or paused tasks into building and registers
// the cancellation handle for the in-flight work.
func (t *Tracker) BeginBuilding(ctx context.Context, taskID string, cancel context.CancelFunc) (*domain.BuildingTask, error) {
	task, err := t.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := task.Transition(domain.TaskBuilding); err != nil {
		return nil, err
	}

	estimated := time.Now().UTC().Add(90 * time.Second)
	task.EstimatedEnd = &estimated
	task.CurrentStep = "Starting build"

	if err := t.persist(ctx, task); err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.cancels[taskID] = cancel
	t.mu.Unlock()
	return task, nil
}

// Checkpoint advances progress at fixed orchestrator checkpoints. Progress
// is informational only, so a stale checkpoint is dropped silently.
func (t *Tracker) Checkpoint(ctx context.Context, taskID string, progress int, step string) {
	task, err := t.repo.GetTask(ctx, taskID)
	if err != nil {
		return
	}
	if task.Status != domain.TaskBuilding {
		return
	}
	task.AdvanceProgress(progress, step)
	if err := t.persist(ctx, task); err != nil && t.logger != nil {
		t.logger.Printf("checkpoint persist failed task_id=%s err=%v", taskID, err)
	}
}

// Complete attaches the artifact and finishes the task.
func (t *Tracker) Complete(ctx context.Context, taskID, artifactID string) error {
	return t.finish(ctx, taskID, domain.TaskCompleted, func(task *domain.BuildingTask) {
		task.ArtifactID = artifactID
		task.Progress = 100
		task.CurrentStep = "Completed"
		task.ErrorMessage = ""
	})
}

// Fail marks the task as unrecoverably failed, keeping the record around
// for inspection. Gateway errors can echo credentials or contact data from
// response bodies, so the message is redacted before it is persisted.
func (t *Tracker) Fail(ctx context.Context, taskID, message string) error {
	return t.finish(ctx, taskID, domain.TaskError, func(task *domain.BuildingTask) {
		task.CurrentStep = "Failed"
		task.ErrorMessage = policy.MaskPIIString(message)
	})
}

// Abandon fails a task whose build never made it onto the queue, freeing
// the slot for a retry. The machine has no queued -> error edge, so the
// task is driven through building explicitly.
func (t *Tracker) Abandon(ctx context.Context, taskID, message string) error {
	task, err := t.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Status == domain.TaskQueued {
		if err := task.Transition(domain.TaskBuilding); err != nil {
			return err
		}
	}
	if err := task.Transition(domain.TaskError); err != nil {
		return err
	}
	task.CurrentStep = "Failed"
	task.ErrorMessage = policy.MaskPIIString(message)

	t.mu.Lock()
	delete(t.cancels, taskID)
	t.mu.Unlock()

	return t.persist(ctx, task)
}

// Pause aborts the in-flight request and parks the task. Resuming restarts
// the build from scratch; only the task record survives.
func (t *Tracker) Pause(ctx context.Context, taskID string) (*domain.BuildingTask, error) {
	if err := t.abort(taskID); err != nil {
		return nil, err
	}
	task, err := t.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := task.Transition(domain.TaskPaused); err != nil {
		return nil, err
	}
	task.CurrentStep = "Paused"
	if err := t.persist(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Cancel aborts the in-flight request and forces the task into error with
// a cancellation message.
func (t *Tracker) Cancel(ctx context.Context, taskID string) (*domain.BuildingTask, error) {
	if err := t.abort(taskID); err != nil {
		return nil, err
	}
	if err := t.Fail(ctx, taskID, cancelledMessage); err != nil {
		return nil, err
	}
	return t.repo.GetTask(ctx, taskID)
}

func (t *Tracker) Get(ctx context.Context, taskID string) (*domain.BuildingTask, error) {
	return t.repo.GetTask(ctx, taskID)
}

func (t *Tracker) List(ctx context.Context) ([]domain.BuildingTask, error) {
	return t.repo.ListTasks(ctx)
}

func (t *Tracker) finish(ctx context.Context, taskID string, status domain.TaskStatus, apply func(*domain.BuildingTask)) error {
	task, err := t.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := task.Transition(status); err != nil {
		return err
	}
	apply(task)

	t.mu.Lock()
	delete(t.cancels, taskID)
	t.mu.Unlock()

	return t.persist(ctx, task)
}

func (t *Tracker) abort(taskID string) error {
	t.mu.Lock()
	cancel, ok := t.cancels[taskID]
	delete(t.cancels, taskID)
	t.mu.Unlock()

	if !ok {
		return ErrNotCancelable
	}
	cancel()
	return nil
}

func (t *Tracker) persist(ctx context.Context, task *domain.BuildingTask) error {
	if err := t.repo.UpsertTask(ctx, task); err != nil {
		return fmt.Errorf("persist task: %w", err)
	}
	if t.state != nil {
		tasks, err := t.repo.ListTasks(ctx)
		if err == nil {
			if err := t.state.SaveTaskSnapshot(ctx, tasks); err != nil && t.logger != nil {
				t.logger.Printf("task snapshot persist failed err=%v", err)
			}
		}
	}
	return nil
}
