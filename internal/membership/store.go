package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

// Store owns the memberships table: the user-project association rows that
// grant access, optionally tagged with the member's personal category.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// IsMember reports whether the user holds an explicit membership row for the
// project. The global admin flag satisfies this check for every project; the
// bypass lives here so every membership gate in the system inherits it.
func (s *Store) IsMember(ctx context.Context, userID, projectID int64) (bool, error) {
	var isMember bool
	err := s.db.QueryRowContext(ctx, `
        SELECT EXISTS(SELECT 1 FROM memberships WHERE user_id = ? AND project_id = ?)
            OR EXISTS(SELECT 1 FROM users WHERE id = ? AND is_admin)`,
		userID, projectID, userID).Scan(&isMember)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return isMember, nil
}

// Add creates the membership row. The (user_id, project_id) pair is unique;
// a second row for the same pair fails with ErrDuplicateMembership. A
// category tag, when given, must belong to the joining user.
func (s *Store) Add(ctx context.Context, userID, projectID int64, categoryID *int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add membership: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM memberships WHERE user_id = ? AND project_id = ?)`,
		userID, projectID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check duplicate membership: %w", err)
	}
	if exists {
		return domain.ErrDuplicateMembership
	}

	if categoryID != nil {
		var owned bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE id = ? AND user_id = ?)`,
			*categoryID, userID).Scan(&owned)
		if err != nil {
			return fmt.Errorf("check category owner: %w", err)
		}
		if !owned {
			return domain.ErrNotFound
		}
	}

	var category sql.NullInt64
	if categoryID != nil {
		category = sql.NullInt64{Int64: *categoryID, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO memberships (user_id, project_id, category_id, joined_at) VALUES (?, ?, ?, ?)`,
		userID, projectID, category, time.Now().UTC()); err != nil {
		// The primary key on (user_id, project_id) backstops the check above
		// under concurrent inserts. Any other insert failure surfaces as-is.
		if isDuplicateKey(err) {
			return domain.ErrDuplicateMembership
		}
		return fmt.Errorf("insert membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add membership: %w", err)
	}
	return nil
}

// Remove deletes the membership row, revoking access unless the user is the
// project owner or a global admin.
func (s *Store) Remove(ctx context.Context, userID, projectID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE user_id = ? AND project_id = ?`,
		userID, projectID)
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotAMember
	}
	return nil
}

// ListMembers returns the users holding an explicit membership row for the
// project. The owner appears only if an explicit row exists for them.
func (s *Store) ListMembers(ctx context.Context, projectID int64) ([]domain.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT u.id, u.login, u.username, u.icon_id, u.is_verified
        FROM memberships m
        JOIN users u ON u.id = m.user_id
        WHERE m.project_id = ?
        ORDER BY m.joined_at, u.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []domain.UserSummary
	for rows.Next() {
		var u domain.UserSummary
		var iconID sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Login, &u.Username, &iconID, &u.IsVerified); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		if iconID.Valid {
			u.IconID = &iconID.Int64
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

// ListAccessibleProjects returns the projects the user can open. Global
// admins get every project with empty membership metadata. Everyone else
// gets projects they joined plus projects they own; owned projects carry
// membership metadata only when an explicit row also exists.
func (s *Store) ListAccessibleProjects(ctx context.Context, userID int64) ([]domain.ProjectWithMembership, error) {
	isAdmin, err := s.isAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	if isAdmin {
		rows, err = s.db.QueryContext(ctx, `
            SELECT p.id, p.name, p.owner_id, p.created_at, NULL, NULL
            FROM projects p
            ORDER BY p.id`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
            SELECT p.id, p.name, p.owner_id, p.created_at, m.category_id, m.joined_at
            FROM projects p
            JOIN memberships m ON m.project_id = p.id AND m.user_id = ?
            UNION
            SELECT p.id, p.name, p.owner_id, p.created_at, m.category_id, m.joined_at
            FROM projects p
            LEFT JOIN memberships m ON m.project_id = p.id AND m.user_id = ?
            WHERE p.owner_id = ?
            ORDER BY 1`, userID, userID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list accessible projects: %w", err)
	}
	defer rows.Close()

	var result []domain.ProjectWithMembership
	for rows.Next() {
		var p domain.ProjectWithMembership
		var categoryID sql.NullInt64
		var joinedAt sql.NullTime
		if err := rows.Scan(&p.ProjectID, &p.ProjectName, &p.OwnerID, &p.ProjectCreatedAt, &categoryID, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan accessible project: %w", err)
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

// ListAccessibleProjectsByCategory narrows the accessible set to memberships
// tagged with the given category.
func (s *Store) ListAccessibleProjectsByCategory(ctx context.Context, userID, categoryID int64) ([]domain.ProjectWithMembership, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT p.id, p.name, p.owner_id, p.created_at, m.category_id, m.joined_at
        FROM projects p
        JOIN memberships m ON m.project_id = p.id
        WHERE m.user_id = ? AND m.category_id = ?
        ORDER BY p.id`, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list projects by category: %w", err)
	}
	defer rows.Close()

	var result []domain.ProjectWithMembership
	for rows.Next() {
		var p domain.ProjectWithMembership
		var category sql.NullInt64
		var joinedAt sql.NullTime
		if err := rows.Scan(&p.ProjectID, &p.ProjectName, &p.OwnerID, &p.ProjectCreatedAt, &category, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan project by category: %w", err)
		}
		if category.Valid {
			p.CategoryID = &category.Int64
		}
		if joinedAt.Valid {
			t := joinedAt.Time
			p.JoinedAt = &t
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// SetCategory retags the user's membership. A nil categoryID clears the tag.
// Fails with ErrNotAMember when no membership row exists and with
// ErrNotFound when the category does not belong to the user.
func (s *Store) SetCategory(ctx context.Context, userID, projectID int64, categoryID *int64) error {
	if categoryID != nil {
		var owned bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE id = ? AND user_id = ?)`,
			*categoryID, userID).Scan(&owned)
		if err != nil {
			return fmt.Errorf("check category owner: %w", err)
		}
		if !owned {
			return domain.ErrNotFound
		}
	}

	var category sql.NullInt64
	if categoryID != nil {
		category = sql.NullInt64{Int64: *categoryID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE memberships SET category_id = ? WHERE user_id = ? AND project_id = ?`,
		category, userID, projectID)
	if err != nil {
		return fmt.Errorf("set membership category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set membership category: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotAMember
	}
	return nil
}

// isDuplicateKey recognizes MySQL error 1062 (ER_DUP_ENTRY). Only a key
// violation maps to ErrDuplicateMembership.
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (s *Store) isAdmin(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = ? AND is_admin)`, userID).Scan(&isAdmin)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return isAdmin, nil
}
