package worker

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/leadforge/leadforge-back/internal/ai"
	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/repository"
	"github.com/leadforge/leadforge-back/internal/service"
	"github.com/leadforge/leadforge-back/internal/store"
	"github.com/leadforge/leadforge-back/internal/tracker"
)

type scriptedConsumer struct {
	messages []domain.BuildMessage
}

func (c *scriptedConsumer) Consume(ctx context.Context, handler func(context.Context, domain.BuildMessage) error) error {
	for _, message := range c.messages {
		_ = handler(ctx, message)
	}
	return nil
}

type hookGenerator struct {
	generate func(ctx context.Context) (ai.GenerateResult, error)
}

func (g *hookGenerator) Generate(ctx context.Context, _ ai.GenerateRequest) (ai.GenerateResult, error) {
	return g.generate(ctx)
}

func (g *hookGenerator) Available() bool { return true }

type failingArtifacts struct {
	repository.ArtifactsRepository
}

func (failingArtifacts) SaveArtifact(context.Context, *domain.GeneratedArtifact) error {
	return errors.New("disk full")
}

func newWorkerFixture(t *testing.T, client ai.TextGenerator, artifacts repository.ArtifactsRepository) (*tracker.Tracker, *service.ArtifactBuilder) {
	t.Helper()
	logger := log.New(&strings.Builder{}, "", 0)
	state := store.NewStateService(store.NewMemoryKV())
	taskTracker := tracker.New(repository.NewMemoryTasksRepository(), state, logger)
	builder := service.NewArtifactBuilder(service.ArtifactBuilderDependencies{
		Router:    ai.NewModelRouter(ai.ModelRouterConfig{}),
		Client:    client,
		Artifacts: artifacts,
		Logger:    logger,
	})
	return taskTracker, builder
}

func TestProcessorCompletesBuild(t *testing.T) {
	ctx := context.Background()
	artifacts := repository.NewMemoryArtifactsRepository()
	taskTracker, builder := newWorkerFixture(t, nil, artifacts)

	business := domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina", Category: "restaurant"}
	task, err := taskTracker.Start(ctx, business, domain.AgentWebsite)
	if err != nil {
		t.Fatalf("start task: %v", err)
	}

	consumer := &scriptedConsumer{messages: []domain.BuildMessage{{
		TaskID:   task.ID,
		Agent:    domain.AgentWebsite,
		Business: business,
	}}}
	logger := log.New(&strings.Builder{}, "", 0)
	NewProcessor(consumer, taskTracker, builder, logger).Start(ctx)

	done, err := taskTracker.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if done.Status != domain.TaskCompleted || done.Progress != 100 {
		t.Fatalf("expected completed task, got %+v", done)
	}
	if done.ArtifactID == "" {
		t.Fatalf("expected artifact attached to the task")
	}
	if _, err := artifacts.GetArtifact(ctx, done.ArtifactID); err != nil {
		t.Fatalf("expected persisted artifact: %v", err)
	}
}

func TestProcessorMarksTaskFailedOnBuildError(t *testing.T) {
	ctx := context.Background()
	taskTracker, builder := newWorkerFixture(t, nil, failingArtifacts{})

	business := domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina"}
	task, err := taskTracker.Start(ctx, business, domain.AgentWebsite)
	if err != nil {
		t.Fatalf("start task: %v", err)
	}

	consumer := &scriptedConsumer{messages: []domain.BuildMessage{{
		TaskID:   task.ID,
		Agent:    domain.AgentWebsite,
		Business: business,
	}}}
	logger := log.New(&strings.Builder{}, "", 0)
	NewProcessor(consumer, taskTracker, builder, logger).Start(ctx)

	failed, err := taskTracker.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if failed.Status != domain.TaskError {
		t.Fatalf("expected error status, got %s", failed.Status)
	}
	if !strings.Contains(failed.ErrorMessage, "disk full") {
		t.Fatalf("expected persistence error recorded, got %q", failed.ErrorMessage)
	}
}

func TestProcessorLeavesPausedTaskAlone(t *testing.T) {
	ctx := context.Background()
	artifacts := repository.NewMemoryArtifactsRepository()

	// The generator pauses its own task mid-flight, standing in for a user
	// hitting pause while the gateway call is running.
	var taskTracker *tracker.Tracker
	var taskID string
	client := &hookGenerator{generate: func(callCtx context.Context) (ai.GenerateResult, error) {
		if _, err := taskTracker.Pause(context.Background(), taskID); err != nil {
			t.Errorf("pause during build: %v", err)
		}
		<-callCtx.Done()
		return ai.GenerateResult{}, callCtx.Err()
	}}
	taskTracker, builder := newWorkerFixture(t, client, artifacts)

	business := domain.BusinessRecord{ID: "biz-1", Name: "Rosa's Cantina"}
	task, err := taskTracker.Start(ctx, business, domain.AgentWebsite)
	if err != nil {
		t.Fatalf("start task: %v", err)
	}
	taskID = task.ID

	consumer := &scriptedConsumer{messages: []domain.BuildMessage{{
		TaskID:   task.ID,
		Agent:    domain.AgentWebsite,
		Business: business,
	}}}
	logger := log.New(&strings.Builder{}, "", 0)
	NewProcessor(consumer, taskTracker, builder, logger).Start(ctx)

	paused, err := taskTracker.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if paused.Status != domain.TaskPaused {
		t.Fatalf("expected the pause to stick, got %s", paused.Status)
	}
	if paused.ArtifactID != "" {
		t.Fatalf("aborted build must not attach an artifact")
	}
}
