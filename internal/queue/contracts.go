package queue

import (
	"context"

	"github.com/leadforge/leadforge-back/internal/domain"
)

// Producer sends async jobs to a queue backend.
type Producer interface {
	Enqueue(ctx context.Context, message domain.BuildMessage) error
}

// Consumer receives async jobs and executes handlers.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, domain.BuildMessage) error) error
}
