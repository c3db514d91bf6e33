package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

// Filter narrows and orders the accessible task set. All set predicates are
// combined with AND; zero values mean "no constraint".
type Filter struct {
	Status       []domain.TaskStatus
	Indicator    []domain.TaskIndicator
	Name         string
	ProjectID    *int64
	OwnerID      *int64
	ParentTaskID *int64
	AssignedToMe bool
	SortBy       string // created_at | last_change | deadline
	SortOrder    string // asc (default) | desc
}

var sortColumns = map[string]string{
	"created_at":  "t.created_at",
	"last_change": "t.last_change",
	"deadline":    "t.deadline",
}

// Validate rejects unknown enum members and sort keys before they reach the
// query builder.
func (f *Filter) Validate() error {
	for _, s := range f.Status {
		if !s.Valid() {
			return fmt.Errorf("invalid task status %q", s)
		}
	}
	for _, i := range f.Indicator {
		if !i.Valid() {
			return fmt.Errorf("invalid task indicator %q", i)
		}
	}
	if f.SortBy != "" {
		if _, ok := sortColumns[f.SortBy]; !ok {
			return fmt.Errorf("invalid sort field %q", f.SortBy)
		}
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		return fmt.Errorf("invalid sort order %q", f.SortOrder)
	}
	return nil
}

// ListAccessible returns the tasks visible to the user, filtered and
// ordered. Non-admins see only tasks in projects they hold a membership row
// for; admins see every task.
func (e *Engine) ListAccessible(ctx context.Context, userID int64, filter Filter) ([]domain.Task, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	isAdmin, err := e.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}

	query, args := buildTaskQuery(userID, isAdmin, filter)
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accessible tasks: %w", err)
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

// buildTaskQuery folds the optional predicates into a single statement, the
// condition-list-plus-args pattern keeping filters independently testable
// and free of string-spliced values.
func buildTaskQuery(userID int64, isAdmin bool, f Filter) (string, []interface{}) {
	var b strings.Builder
	var args []interface{}

	b.WriteString(`SELECT t.id, t.name, t.description, t.status, t.indicator,
        t.project_id, t.owner_id, t.performer_id, t.parent_task_id,
        t.deadline, t.created_at, t.last_change
        FROM tasks t`)

	var conditions []string
	if !isAdmin {
		b.WriteString(` JOIN memberships m ON m.project_id = t.project_id`)
		conditions = append(conditions, "m.user_id = ?")
		args = append(args, userID)
	}

	if len(f.Status) > 0 {
		placeholders := make([]string, len(f.Status))
		for i, s := range f.Status {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		conditions = append(conditions, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}

	if len(f.Indicator) > 0 {
		placeholders := make([]string, len(f.Indicator))
		for i, ind := range f.Indicator {
			placeholders[i] = "?"
			args = append(args, string(ind))
		}
		conditions = append(conditions, fmt.Sprintf("t.indicator IN (%s)", strings.Join(placeholders, ",")))
	}

	if f.Name != "" {
		conditions = append(conditions, "LOWER(t.name) LIKE LOWER(?)")
		args = append(args, "%"+f.Name+"%")
	}

	if f.ProjectID != nil {
		conditions = append(conditions, "t.project_id = ?")
		args = append(args, *f.ProjectID)
	}

	if f.OwnerID != nil {
		conditions = append(conditions, "t.owner_id = ?")
		args = append(args, *f.OwnerID)
	}

	if f.ParentTaskID != nil {
		conditions = append(conditions, "t.parent_task_id = ?")
		args = append(args, *f.ParentTaskID)
	}

	if f.AssignedToMe {
		conditions = append(conditions, "t.performer_id = ?")
		args = append(args, userID)
	}

	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}

	if f.SortBy != "" {
		direction := "ASC"
		if f.SortOrder == "desc" {
			direction = "DESC"
		}
		// Ties break on id so repeated calls return the same order.
		fmt.Fprintf(&b, " ORDER BY %s %s, t.id ASC", sortColumns[f.SortBy], direction)
	}

	return b.String(), args
}

func scanTask(rows *sql.Rows) (domain.Task, error) {
	var t domain.Task
	var description sql.NullString
	var performerID, parentTaskID sql.NullInt64
	var deadline sql.NullTime
	err := rows.Scan(&t.ID, &t.Name, &description, &t.Status, &t.Indicator,
		&t.ProjectID, &t.OwnerID, &performerID, &parentTaskID,
		&deadline, &t.CreatedAt, &t.LastChange)
	if err != nil {
		return domain.Task{}, fmt.Errorf("scan task: %w", err)
	}
	t.Description = description.String
	if performerID.Valid {
		t.PerformerID = &performerID.Int64
	}
	if parentTaskID.Valid {
		t.ParentTaskID = &parentTaskID.Int64
	}
	if deadline.Valid {
		d := deadline.Time
		t.Deadline = &d
	}
	return t, nil
}
