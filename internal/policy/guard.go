// Package policy answers "may actor X do Y to Z" for every protected
// operation. Predicates are side-effect free and composed by callers; the
// admin bypass is an explicit branch in each one rather than an ambient
// default, so it stays visible and testable.
package policy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zwaTOx/MultiTasker/internal/domain"
	"github.com/zwaTOx/MultiTasker/internal/membership"
)

type Guard struct {
	db      *sql.DB
	members *membership.Store
}

func NewGuard(db *sql.DB, members *membership.Store) *Guard {
	return &Guard{db: db, members: members}
}

func (g *Guard) IsProjectOwner(ctx context.Context, userID, projectID int64) (bool, error) {
	var owner bool
	err := g.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM projects WHERE id = ? AND owner_id = ?)`,
		projectID, userID).Scan(&owner)
	if err != nil {
		return false, fmt.Errorf("check project owner: %w", err)
	}
	return owner, nil
}

func (g *Guard) IsGlobalAdmin(ctx context.Context, userID int64) (bool, error) {
	var admin bool
	err := g.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = ? AND is_admin)`,
		userID).Scan(&admin)
	if err != nil {
		return false, fmt.Errorf("check global admin: %w", err)
	}
	return admin, nil
}

// CanAccessProject grants read access: owner, explicit member, or admin.
// Owners do not need a membership row of their own.
func (g *Guard) CanAccessProject(ctx context.Context, userID, projectID int64) (bool, error) {
	owner, err := g.IsProjectOwner(ctx, userID, projectID)
	if err != nil {
		return false, err
	}
	if owner {
		return true, nil
	}
	// IsMember already carries the admin bypass.
	return g.members.IsMember(ctx, userID, projectID)
}

// CanModifyTask grants write access to the task creator, the owner of the
// task's project, and admins. Plain members may read but not modify tasks
// they did not create.
func (g *Guard) CanModifyTask(ctx context.Context, userID int64, task domain.Task) (bool, error) {
	if task.OwnerID == userID {
		return true, nil
	}
	owner, err := g.IsProjectOwner(ctx, userID, task.ProjectID)
	if err != nil {
		return false, err
	}
	if owner {
		return true, nil
	}
	return g.IsGlobalAdmin(ctx, userID)
}

// CanManageMembership gates inviting and kicking: project owner or admin.
func (g *Guard) CanManageMembership(ctx context.Context, userID, projectID int64) (bool, error) {
	owner, err := g.IsProjectOwner(ctx, userID, projectID)
	if err != nil {
		return false, err
	}
	if owner {
		return true, nil
	}
	return g.IsGlobalAdmin(ctx, userID)
}
