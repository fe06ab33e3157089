package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-task-relay/internal/model"
)

// TaskRepository stores task records. Every query is scoped by owner; a task
// owned by someone else is indistinguishable from a missing one.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, effort, due_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		t.UserID, t.Title, t.Description, t.Effort, t.DueDate.Time).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID int64) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, description, effort, due_date, created_at
		 FROM tasks WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) FindByID(ctx context.Context, userID int64, id int64) (model.Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, description, effort, due_date, created_at
		 FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, model.ErrTaskNotFound
	}
	return t, err
}

func (r *TaskRepository) Update(ctx context.Context, t model.Task) (model.Task, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE tasks SET title = $3, description = $4, effort = $5, due_date = $6
		 WHERE id = $1 AND user_id = $2
		 RETURNING created_at`,
		t.ID, t.UserID, t.Title, t.Description, t.Effort, t.DueDate.Time).
		Scan(&t.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Task{}, model.ErrTaskNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID int64, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Effort, &t.DueDate.Time, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Task{}, err
		}
		return model.Task{}, fmt.Errorf("scan task: %w", err)
	}
	t.DueDate = model.NewDate(t.DueDate.Time)
	return t, nil
}
