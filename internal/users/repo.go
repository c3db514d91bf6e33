package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

// Repo owns the users table.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const userColumns = `id, login, COALESCE(hashed_password, ''), username, icon_id, is_verified, is_admin`

func (r *Repo) GetByID(ctx context.Context, userID int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
	return scanUser(row)
}

func (r *Repo) GetByLogin(ctx context.Context, login string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE login = ?`, login)
	return scanUser(row)
}

// Exists reports whether a user with the login is already registered.
func (r *Repo) Exists(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE login = ?)`, login).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// Create registers a verified user with a usable credential.
func (r *Repo) Create(ctx context.Context, login, hashedPassword, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (login, hashed_password, username, is_verified) VALUES (?, ?, ?, TRUE)`,
		login, hashedPassword, username)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create user id: %w", err)
	}
	return id, nil
}

// CreateUnverified fetches or creates a placeholder user for an email that
// has been invited but never registered. Fetching an existing login never
// overwrites it, so the call is idempotent.
func (r *Repo) CreateUnverified(ctx context.Context, email string) (domain.User, error) {
	existing, err := r.GetByLogin(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (login, username, is_verified) VALUES (?, '', FALSE)`, email)
	if err != nil {
		// Lost a race against a concurrent insert of the same login.
		if u, lookupErr := r.GetByLogin(ctx, email); lookupErr == nil {
			return u, nil
		}
		return domain.User{}, fmt.Errorf("create unverified user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, fmt.Errorf("create unverified user id: %w", err)
	}
	return domain.User{ID: id, Login: email, IsVerified: false}, nil
}

// SetPassword replaces the credential and marks the account verified, which
// is how an invited placeholder account becomes claimable.
func (r *Repo) SetPassword(ctx context.Context, userID int64, hashedPassword string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET hashed_password = ?, is_verified = TRUE WHERE id = ?`,
		hashedPassword, userID)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRowContext(ctx,
		`SELECT is_admin FROM users WHERE id = ?`, userID).Scan(&isAdmin)
	if err == sql.ErrNoRows {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return isAdmin, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, login, username, icon_id, is_verified FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var result []domain.UserSummary
	for rows.Next() {
		var u domain.UserSummary
		var iconID sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Login, &u.Username, &iconID, &u.IsVerified); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if iconID.Valid {
			u.IconID = &iconID.Int64
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var iconID sql.NullInt64
	err := row.Scan(&u.ID, &u.Login, &u.HashedPassword, &u.Username, &iconID, &u.IsVerified, &u.IsAdmin)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	if iconID.Valid {
		u.IconID = &iconID.Int64
	}
	return u, nil
}
