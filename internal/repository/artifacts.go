package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/leadforge/leadforge-back/internal/domain"
)

var ErrNotFound = errors.New("resource not found")

// ArtifactsRepository abstracts artifact persistence. Save is an upsert by
// id: viewer edits replace the stored content wholesale.
type ArtifactsRepository interface {
	SaveArtifact(ctx context.Context, artifact *domain.GeneratedArtifact) error
	GetArtifact(ctx context.Context, artifactID string) (*domain.GeneratedArtifact, error)
	ListArtifactsByBusiness(ctx context.Context, businessID string) ([]domain.GeneratedArtifact, error)
}

// MemoryArtifactsRepository stores artifacts in memory for local development
// and tests.
type MemoryArtifactsRepository struct {
	mu        sync.RWMutex
	artifacts map[string]*domain.GeneratedArtifact
}

func NewMemoryArtifactsRepository() *MemoryArtifactsRepository {
	return &MemoryArtifactsRepository{
		artifacts: make(map[string]*domain.GeneratedArtifact),
	}
}

func (r *MemoryArtifactsRepository) SaveArtifact(_ context.Context, artifact *domain.GeneratedArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *artifact
	r.artifacts[artifact.ID] = &clone
	return nil
}

func (r *MemoryArtifactsRepository) GetArtifact(_ context.Context, artifactID string) (*domain.GeneratedArtifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	artifact, ok := r.artifacts[artifactID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *artifact
	return &clone, nil
}

func (r *MemoryArtifactsRepository) ListArtifactsByBusiness(
	_ context.Context,
	businessID string,
) ([]domain.GeneratedArtifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.GeneratedArtifact, 0)
	for _, artifact := range r.artifacts {
		if businessID != "" && artifact.BusinessID != businessID {
			continue
		}
		items = append(items, *artifact)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
