package service

import (
	"context"
	"fmt"
	"time"

	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/queue"
	"github.com/leadforge/leadforge-back/internal/store"
	"github.com/leadforge/leadforge-back/internal/tracker"
)

// BuildsService is the API-facing entry point: it opens the task slot and
// hands the build to the queue so it runs detached from the request that
// started it.
type BuildsService struct {
	tracker  *tracker.Tracker
	producer queue.Producer
	state    *store.StateService
}

func NewBuildsService(taskTracker *tracker.Tracker, producer queue.Producer, state *store.StateService) *BuildsService {
	return &BuildsService{tracker: taskTracker, producer: producer, state: state}
}

func (s *BuildsService) StartBuild(
	ctx context.Context,
	business domain.BusinessRecord,
	agent domain.AgentKind,
) (*domain.BuildingTask, error) {
	if err := business.Validate(); err != nil {
		return nil, err
	}
	if !domain.ValidAgentKind(agent) {
		return nil, fmt.Errorf("unknown agent type %q", agent)
	}

	task, err := s.tracker.Start(ctx, business, agent)
	if err != nil {
		return nil, err
	}

	if err := s.enqueue(ctx, task.ID, business, agent); err != nil {
		// Free the slot: a queued task with no message behind it would
		// block every later build for the pair.
		if abandonErr := s.tracker.Abandon(ctx, task.ID, err.Error()); abandonErr != nil {
			return nil, fmt.Errorf("enqueue build: %w (free task slot: %v)", err, abandonErr)
		}
		return nil, fmt.Errorf("enqueue build: %w", err)
	}
	return task, nil
}

// Resume re-runs a paused build from scratch, reusing the task record.
func (s *BuildsService) Resume(ctx context.Context, taskID string) (*domain.BuildingTask, error) {
	task, err := s.tracker.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.TaskPaused {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, task.Status, domain.TaskBuilding)
	}

	business := s.lookupBusiness(ctx, task.BusinessID, task.BusinessName)
	if err := s.enqueue(ctx, task.ID, business, task.Agent); err != nil {
		return nil, fmt.Errorf("enqueue resume: %w", err)
	}
	return task, nil
}

func (s *BuildsService) Pause(ctx context.Context, taskID string) (*domain.BuildingTask, error) {
	return s.tracker.Pause(ctx, taskID)
}

func (s *BuildsService) Cancel(ctx context.Context, taskID string) (*domain.BuildingTask, error) {
	return s.tracker.Cancel(ctx, taskID)
}

func (s *BuildsService) GetTask(ctx context.Context, taskID string) (*domain.BuildingTask, error) {
	return s.tracker.Get(ctx, taskID)
}

func (s *BuildsService) ListTasks(ctx context.Context) ([]domain.BuildingTask, error) {
	return s.tracker.List(ctx)
}

// lookupBusiness recovers the full record from the analyzed-business state;
// a resume started after the analysis expired still works with identity only.
func (s *BuildsService) lookupBusiness(ctx context.Context, businessID, businessName string) domain.BusinessRecord {
	if s.state != nil {
		analyzed, err := s.state.AnalyzedBusinesses(ctx)
		if err == nil {
			for _, record := range analyzed {
				if record.Business.ID == businessID {
					return record.Business
				}
			}
		}
	}
	return domain.BusinessRecord{ID: businessID, Name: businessName}
}

func (s *BuildsService) enqueue(
	ctx context.Context,
	taskID string,
	business domain.BusinessRecord,
	agent domain.AgentKind,
) error {
	return s.producer.Enqueue(ctx, domain.BuildMessage{
		TaskID:      taskID,
		Agent:       agent,
		Business:    business,
		Attempt:     0,
		RequestedAt: time.Now().UTC(),
	})
}
