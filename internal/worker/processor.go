package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/leadforge/leadforge-back/internal/apierr"
	"github.com/leadforge/leadforge-back/internal/domain"
	"github.com/leadforge/leadforge-back/internal/queue"
	"github.com/leadforge/leadforge-back/internal/service"
	"github.com/leadforge/leadforge-back/internal/tracker"
)

// Processor consumes build messages and drives the task state machine
// around each artifact build.
type Processor struct {
	consumer queue.Consumer
	tracker  *tracker.Tracker
	builder  *service.ArtifactBuilder
	logger   *log.Logger
}

func NewProcessor(
	consumer queue.Consumer,
	taskTracker *tracker.Tracker,
	builder *service.ArtifactBuilder,
	logger *log.Logger,
) *Processor {
	return &Processor{
		consumer: consumer,
		tracker:  taskTracker,
		builder:  builder,
		logger:   logger,
	}
}

func (p *Processor) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := p.consumer.Consume(ctx, p.processMessage)
		if err == nil || ctx.Err() != nil {
			return
		}
		if p.logger != nil {
			p.logger.Printf("worker consume loop error: %v", err)
		}

		timer := time.NewTimer(2 * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *Processor) processMessage(ctx context.Context, message domain.BuildMessage) error {
	// buildCtx is the abortable handle: pausing or cancelling the task
	// cancels it, which aborts the in-flight gateway request.
	buildCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	task, err := p.tracker.BeginBuilding(ctx, message.TaskID, cancel)
	if err != nil {
		return fmt.Errorf("begin building task %s: %w", message.TaskID, err)
	}

	p.tracker.Checkpoint(ctx, task.ID, 25, "Analyzing business profile")
	p.tracker.Checkpoint(ctx, task.ID, 50, "Generating content")

	artifact, buildErr := p.builder.Build(buildCtx, message.Business, message.Agent)
	if buildErr != nil {
		if errors.Is(buildErr, context.Canceled) {
			// Pause or cancel already moved the task out of building;
			// nothing to record and nothing to retry.
			if p.logger != nil {
				p.logger.Printf("build aborted task_id=%s", task.ID)
			}
			return nil
		}
		category := apierr.Classify(buildErr)
		if p.logger != nil {
			p.logger.Printf(
				"build failed task_id=%s category=%s severity=%s err=%v",
				task.ID, category, apierr.SeverityOf(category), buildErr,
			)
		}
		if failErr := p.tracker.Fail(ctx, task.ID, buildErr.Error()); failErr != nil && p.logger != nil {
			p.logger.Printf("mark failed task_id=%s err=%v", task.ID, failErr)
		}
		// The task is already marked failed; ack the message so the queue
		// does not redeliver against a terminal task.
		return nil
	}

	p.tracker.Checkpoint(ctx, task.ID, 90, "Persisting artifact")
	if err := p.tracker.Complete(ctx, task.ID, artifact.ID); err != nil {
		return fmt.Errorf("mark completed task %s: %w", task.ID, err)
	}

	if p.logger != nil {
		p.logger.Printf("build completed agent=%s task_id=%s artifact_id=%s", message.Agent, task.ID, artifact.ID)
	}
	return nil
}
