package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadforge/leadforge-back/internal/domain"
)

type PostgresTasksRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTasksRepository(ctx context.Context, databaseURL string) (*PostgresTasksRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}
	return &PostgresTasksRepository{pool: pool}, nil
}

func NewPostgresTasksRepositoryFromPool(pool *pgxpool.Pool) *PostgresTasksRepository {
	return &PostgresTasksRepository{pool: pool}
}

func (r *PostgresTasksRepository) Close() {
	r.pool.Close()
}

func (r *PostgresTasksRepository) UpsertTask(ctx context.Context, task *domain.BuildingTask) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO building_tasks (
			id, business_id, business_name, agent_type, status, progress,
			current_step, started_at, estimated_completion, artifact_id,
			error_message, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
			progress = EXCLUDED.progress,
			current_step = EXCLUDED.current_step,
			estimated_completion = EXCLUDED.estimated_completion,
			artifact_id = EXCLUDED.artifact_id,
			error_message = EXCLUDED.error_message,
			updated_at = EXCLUDED.updated_at
	`,
		task.ID,
		task.BusinessID,
		task.BusinessName,
		string(task.Agent),
		string(task.Status),
		task.Progress,
		task.CurrentStep,
		task.StartedAt,
		task.EstimatedEnd,
		task.ArtifactID,
		task.ErrorMessage,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}

func (r *PostgresTasksRepository) GetTask(ctx context.Context, taskID string) (*domain.BuildingTask, error) {
	return r.queryOne(ctx, `WHERE id = $1`, taskID)
}

func (r *PostgresTasksRepository) GetTaskByPair(
	ctx context.Context,
	businessID string,
	agent domain.AgentKind,
) (*domain.BuildingTask, error) {
	return r.queryOne(ctx, `WHERE business_id = $1 AND agent_type = $2`, businessID, string(agent))
}

func (r *PostgresTasksRepository) queryOne(ctx context.Context, where string, args ...any) (*domain.BuildingTask, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, business_id, business_name, agent_type, status, progress,
			current_step, started_at, estimated_completion, artifact_id,
			error_message, updated_at
		FROM building_tasks
	`+where, args...)

	task, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

func (r *PostgresTasksRepository) ListTasks(ctx context.Context) ([]domain.BuildingTask, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, business_id, business_name, agent_type, status, progress,
			current_step, started_at, estimated_completion, artifact_id,
			error_message, updated_at
		FROM building_tasks
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	items := make([]domain.BuildingTask, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		items = append(items, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return items, nil
}

func scanTask(row pgx.Row) (*domain.BuildingTask, error) {
	var (
		task      domain.BuildingTask
		agent     string
		status    string
		startedAt time.Time
		estimated *time.Time
		updatedAt time.Time
	)
	if err := row.Scan(
		&task.ID,
		&task.BusinessID,
		&task.BusinessName,
		&agent,
		&status,
		&task.Progress,
		&task.CurrentStep,
		&startedAt,
		&estimated,
		&task.ArtifactID,
		&task.ErrorMessage,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	task.Agent = domain.AgentKind(agent)
	task.Status = domain.TaskStatus(status)
	task.StartedAt = startedAt.UTC()
	task.UpdatedAt = updatedAt.UTC()
	if estimated != nil {
		utc := estimated.UTC()
		task.EstimatedEnd = &utc
	}
	return &task, nil
}
