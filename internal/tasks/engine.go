// Package tasks persists tasks and builds the filtered, membership-scoped
// views over them.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

type Engine struct {
	db  *sql.DB
	now func() time.Time
}

func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db, now: time.Now}
}

// CreateRequest carries the caller-settable fields of a new task.
type CreateRequest struct {
	Name         string
	Description  string
	Indicator    domain.TaskIndicator
	PerformerID  *int64
	ParentTaskID *int64
	Deadline     *time.Time
}

func (e *Engine) Create(ctx context.Context, ownerID, projectID int64, req CreateRequest) (int64, error) {
	indicator := req.Indicator
	if indicator == "" {
		indicator = domain.IndicatorGreen
	}
	if !indicator.Valid() {
		return 0, fmt.Errorf("invalid task indicator %q", indicator)
	}

	now := e.now()
	res, err := e.db.ExecContext(ctx, `
        INSERT INTO tasks (name, description, status, indicator, project_id,
            owner_id, performer_id, parent_task_id, deadline, created_at, last_change)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Name, req.Description, string(domain.StatusAssigned), string(indicator),
		projectID, ownerID, nullableID(req.PerformerID), nullableID(req.ParentTaskID),
		nullableTime(req.Deadline), now, now)
	if err != nil {
		return 0, fmt.Errorf("create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create task id: %w", err)
	}
	return id, nil
}

func (e *Engine) Get(ctx context.Context, taskID int64) (domain.Task, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT t.id, t.name, t.description, t.status, t.indicator,
            t.project_id, t.owner_id, t.performer_id, t.parent_task_id,
            t.deadline, t.created_at, t.last_change
        FROM tasks t WHERE t.id = ?`, taskID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.Task{}, fmt.Errorf("get task: %w", err)
		}
		return domain.Task{}, domain.ErrNotFound
	}
	return scanTask(rows)
}

// GetDetail returns the task with author, performer and project names
// resolved for display.
func (e *Engine) GetDetail(ctx context.Context, taskID int64) (domain.TaskDetail, error) {
	task, err := e.Get(ctx, taskID)
	if err != nil {
		return domain.TaskDetail{}, err
	}

	detail := domain.TaskDetail{Task: task}
	err = e.db.QueryRowContext(ctx,
		`SELECT u.username, u.login, p.name
         FROM tasks t
         JOIN users u ON u.id = t.owner_id
         JOIN projects p ON p.id = t.project_id
         WHERE t.id = ?`, taskID).
		Scan(&detail.AuthorName, &detail.AuthorEmail, &detail.ProjectName)
	if err != nil {
		return domain.TaskDetail{}, fmt.Errorf("get task detail: %w", err)
	}

	if task.PerformerID != nil {
		var name, email string
		err = e.db.QueryRowContext(ctx,
			`SELECT username, login FROM users WHERE id = ?`, *task.PerformerID).
			Scan(&name, &email)
		if err != nil && err != sql.ErrNoRows {
			return domain.TaskDetail{}, fmt.Errorf("get task performer: %w", err)
		}
		if err == nil {
			detail.PerformerName = &name
			detail.PerformerEmail = &email
		}
	}
	return detail, nil
}

// UpdateRequest carries the partial update: nil fields stay untouched.
type UpdateRequest struct {
	Name        *string
	Description *string
	Status      *domain.TaskStatus
	Indicator   *domain.TaskIndicator
	PerformerID *int64
	Deadline    *time.Time
}

// Update applies the non-nil fields and bumps last_change.
func (e *Engine) Update(ctx context.Context, taskID int64, req UpdateRequest) error {
	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("invalid task status %q", *req.Status)
	}
	if req.Indicator != nil && !req.Indicator.Valid() {
		return fmt.Errorf("invalid task indicator %q", *req.Indicator)
	}

	var sets []string
	var args []interface{}
	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*req.Status))
	}
	if req.Indicator != nil {
		sets = append(sets, "indicator = ?")
		args = append(args, string(*req.Indicator))
	}
	if req.PerformerID != nil {
		sets = append(sets, "performer_id = ?")
		args = append(args, *req.PerformerID)
	}
	if req.Deadline != nil {
		sets = append(sets, "deadline = ?")
		args = append(args, *req.Deadline)
	}

	sets = append(sets, "last_change = ?")
	args = append(args, e.now())
	args = append(args, taskID)

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (e *Engine) Delete(ctx context.Context, taskID int64) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (e *Engine) isAdmin(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := e.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = ? AND is_admin)`, userID).Scan(&isAdmin)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return isAdmin, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
