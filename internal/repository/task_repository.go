package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/employee-task-hub/internal/model"
)

// TaskRepo persists tasks in the 'tasks' table.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

const taskCols = "id,title,description,assigned_to,created_by,priority,status,due_date,created_at,updated_at"

// Create inserts a task in pending status and returns it.
func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t.ID = uuid.NewString()
	t.Status = model.TaskPending
	if t.Priority == "" {
		t.Priority = "medium"
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO tasks (id,title,description,assigned_to,created_by,priority,status,due_date,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		t.ID, t.Title, t.Description, t.AssignedTo, t.CreatedBy, t.Priority, t.Status, t.DueDate, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// GetByID fetches a task by its UUID.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (model.Task, error) {
	var (
		t   model.Task
		due sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.CreatedBy, &t.Priority, &t.Status, &due, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	return t, nil
}

// UpdateStatus sets a task's status. It returns ErrNotFound when the task
// does not exist.
func (r *TaskRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET status=?, updated_at=NOW() WHERE id=?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every task, newest first.
func (r *TaskRepo) ListAll(ctx context.Context) ([]model.Task, error) {
	return r.list(ctx, "SELECT "+taskCols+" FROM tasks ORDER BY created_at DESC")
}

// ListByAssignee returns the tasks assigned to one employee, newest first.
func (r *TaskRepo) ListByAssignee(ctx context.Context, identityID string) ([]model.Task, error) {
	return r.list(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE assigned_to=? ORDER BY created_at DESC", identityID)
}

func (r *TaskRepo) list(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var (
			t   model.Task
			due sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.CreatedBy, &t.Priority, &t.Status, &due, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if due.Valid {
			t.DueDate = &due.Time
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
