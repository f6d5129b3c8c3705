package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/leadforge/leadforge-back/internal/domain"
)

// TasksRepository persists building tasks. Upsert is keyed by task id; the
// tracker guarantees at most one task per (business id, agent kind) pair.
type TasksRepository interface {
	UpsertTask(ctx context.Context, task *domain.BuildingTask) error
	GetTask(ctx context.Context, taskID string) (*domain.BuildingTask, error)
	GetTaskByPair(ctx context.Context, businessID string, agent domain.AgentKind) (*domain.BuildingTask, error)
	ListTasks(ctx context.Context) ([]domain.BuildingTask, error)
}

type MemoryTasksRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.BuildingTask
}

func NewMemoryTasksRepository() *MemoryTasksRepository {
	return &MemoryTasksRepository{
		tasks: make(map[string]*domain.BuildingTask),
	}
}

func (r *MemoryTasksRepository) UpsertTask(_ context.Context, task *domain.BuildingTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := cloneTask(task)
	r.tasks[task.ID] = clone
	return nil
}

func (r *MemoryTasksRepository) GetTask(_ context.Context, taskID string) (*domain.BuildingTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTask(task), nil
}

func (r *MemoryTasksRepository) GetTaskByPair(
	_ context.Context,
	businessID string,
	agent domain.AgentKind,
) (*domain.BuildingTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, task := range r.tasks {
		if task.BusinessID == businessID && task.Agent == agent {
			return cloneTask(task), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryTasksRepository) ListTasks(_ context.Context) ([]domain.BuildingTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.BuildingTask, 0, len(r.tasks))
	for _, task := range r.tasks {
		items = append(items, *cloneTask(task))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StartedAt.After(items[j].StartedAt)
	})
	return items, nil
}

func cloneTask(task *domain.BuildingTask) *domain.BuildingTask {
	if task == nil {
		return nil
	}
	clone := *task
	if task.EstimatedEnd != nil {
		end := *task.EstimatedEnd
		clone.EstimatedEnd = &end
	}
	return &clone
}
