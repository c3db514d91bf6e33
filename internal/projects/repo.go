package projects

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

// Repo owns the projects table.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, ownerID int64, name string) (domain.Project, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (name, owner_id, created_at) VALUES (?, ?, ?)`,
		name, ownerID, time.Now().UTC())
	if err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Project{}, fmt.Errorf("create project id: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *Repo) Get(ctx context.Context, projectID int64) (domain.Project, error) {
	var p domain.Project
	var iconID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id, icon_id, created_at FROM projects WHERE id = ?`,
		projectID).Scan(&p.ID, &p.Name, &p.OwnerID, &iconID, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Project{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("get project: %w", err)
	}
	if iconID.Valid {
		p.IconID = &iconID.Int64
	}
	return p, nil
}

// ListOwned returns the user's own projects with the category tag from their
// membership row, when one exists.
func (r *Repo) ListOwned(ctx context.Context, ownerID int64) ([]domain.ProjectWithMembership, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT p.id, p.name, p.owner_id, p.created_at, m.category_id, m.joined_at
        FROM projects p
        LEFT JOIN memberships m ON m.project_id = p.id AND m.user_id = ?
        WHERE p.owner_id = ?
        ORDER BY p.id`, ownerID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owned projects: %w", err)
	}
	defer rows.Close()

	var result []domain.ProjectWithMembership
	for rows.Next() {
		var p domain.ProjectWithMembership
		var categoryID sql.NullInt64
		var joinedAt sql.NullTime
		if err := rows.Scan(&p.ProjectID, &p.ProjectName, &p.OwnerID, &p.ProjectCreatedAt, &categoryID, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan owned project: %w", err)
		}
		if categoryID.Valid {
			p.CategoryID = &categoryID.Int64
		}
		if joinedAt.Valid {
			t := joinedAt.Time
			p.JoinedAt = &t
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *Repo) Rename(ctx context.Context, projectID int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ? WHERE id = ?`, name, projectID)
	if err != nil {
		return fmt.Errorf("rename project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename project: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the project; memberships and tasks cascade at the schema
// level.
func (r *Repo) Delete(ctx context.Context, projectID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
