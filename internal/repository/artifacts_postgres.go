package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadforge/leadforge-back/internal/domain"
)

type PostgresArtifactsRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresArtifactsRepository(ctx context.Context, databaseURL string) (*PostgresArtifactsRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}
	return &PostgresArtifactsRepository{pool: pool}, nil
}

// NewPostgresArtifactsRepositoryFromPool shares an existing pool, used when
// artifacts and tasks live in the same database.
func NewPostgresArtifactsRepositoryFromPool(pool *pgxpool.Pool) *PostgresArtifactsRepository {
	return &PostgresArtifactsRepository{pool: pool}
}

func (r *PostgresArtifactsRepository) Close() {
	r.pool.Close()
}

func (r *PostgresArtifactsRepository) Pool() *pgxpool.Pool {
	return r.pool
}

func (r *PostgresArtifactsRepository) SaveArtifact(ctx context.Context, artifact *domain.GeneratedArtifact) error {
	metadata, err := json.Marshal(artifact.Metadata)
	if err != nil {
		return fmt.Errorf("marshal artifact metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO artifacts (id, name, type, business_id, content, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata
	`,
		artifact.ID,
		artifact.Name,
		string(artifact.Type),
		artifact.BusinessID,
		artifact.Content,
		metadata,
		artifact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert artifact: %w", err)
	}
	return nil
}

func (r *PostgresArtifactsRepository) GetArtifact(ctx context.Context, artifactID string) (*domain.GeneratedArtifact, error) {
	var (
		artifact     domain.GeneratedArtifact
		artifactType string
		metadata     []byte
		createdAt    time.Time
	)

	err := r.pool.QueryRow(ctx, `
		SELECT id, name, type, business_id, content, metadata, created_at
		FROM artifacts
		WHERE id = $1
	`, artifactID).Scan(
		&artifact.ID,
		&artifact.Name,
		&artifactType,
		&artifact.BusinessID,
		&artifact.Content,
		&metadata,
		&createdAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query artifact: %w", err)
	}

	artifact.Type = domain.ArtifactType(artifactType)
	artifact.CreatedAt = createdAt.UTC()
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &artifact.Metadata); err != nil {
			return nil, fmt.Errorf("decode artifact metadata: %w", err)
		}
	}
	return &artifact, nil
}

func (r *PostgresArtifactsRepository) ListArtifactsByBusiness(
	ctx context.Context,
	businessID string,
) ([]domain.GeneratedArtifact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, type, business_id, content, metadata, created_at
		FROM artifacts
		WHERE ($1 = '' OR business_id = $1)
		ORDER BY created_at DESC
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	items := make([]domain.GeneratedArtifact, 0)
	for rows.Next() {
		var (
			artifact     domain.GeneratedArtifact
			artifactType string
			metadata     []byte
			createdAt    time.Time
		)
		if err := rows.Scan(
			&artifact.ID,
			&artifact.Name,
			&artifactType,
			&artifact.BusinessID,
			&artifact.Content,
			&metadata,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifact.Type = domain.ArtifactType(artifactType)
		artifact.CreatedAt = createdAt.UTC()
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &artifact.Metadata); err != nil {
				return nil, fmt.Errorf("decode artifact metadata: %w", err)
			}
		}
		items = append(items, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return items, nil
}
