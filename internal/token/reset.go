package token

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/zwaTOx/MultiTasker/internal/domain"
)

// ResetCodeTTL is how long a recovery code stays valid after issuance.
const ResetCodeTTL = 10 * time.Minute

// ResetCodes owns the password_reset_codes table. Codes are short numeric
// credentials meant to be typed by a human, so unlike the signed tokens they
// are persisted and single-use.
type ResetCodes struct {
	db  *sql.DB
	now func() time.Time
}

func NewResetCodes(db *sql.DB, now func() time.Time) *ResetCodes {
	if now == nil {
		now = time.Now
	}
	return &ResetCodes{db: db, now: now}
}

// Issue generates a fresh 6-digit code for the user. Any outstanding codes
// of that user and all globally expired codes are removed in the same
// transaction, so at most one live code per user exists at any time.
func (r *ResetCodes) Issue(ctx context.Context, userID int64) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin reset code tx: %w", err)
	}
	defer tx.Rollback()

	now := r.now()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM password_reset_codes WHERE user_id = ?`, userID); err != nil {
		return "", fmt.Errorf("delete outstanding codes: %w", err)
	}
	cutoff := now.Add(-ResetCodeTTL).Unix()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM password_reset_codes WHERE created_at < ?`, cutoff); err != nil {
		return "", fmt.Errorf("delete expired codes: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO password_reset_codes (user_id, code, created_at) VALUES (?, ?, ?)`,
		userID, code, now.Unix()); err != nil {
		return "", fmt.Errorf("insert reset code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit reset code: %w", err)
	}
	return code, nil
}

// Verify resolves a code to its owning user. An expired row is deleted and
// reported as ErrCodeExpired. A matching live row is NOT deleted here: the
// caller consumes it only after the dependent action succeeds, so a
// downstream failure does not burn a still-valid code.
func (r *ResetCodes) Verify(ctx context.Context, code string) (int64, error) {
	var userID, createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, created_at FROM password_reset_codes WHERE code = ?`,
		code).Scan(&userID, &createdAt)
	if err == sql.ErrNoRows {
		return 0, domain.ErrCodeNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup reset code: %w", err)
	}

	if r.now().After(time.Unix(createdAt, 0).Add(ResetCodeTTL)) {
		if _, err := r.db.ExecContext(ctx,
			`DELETE FROM password_reset_codes WHERE user_id = ? AND code = ?`,
			userID, code); err != nil {
			return 0, fmt.Errorf("delete expired code: %w", err)
		}
		return 0, domain.ErrCodeExpired
	}
	return userID, nil
}

// Consume removes all codes of the user, to be called once the action the
// code authorized (token issuance, password change) has succeeded.
func (r *ResetCodes) Consume(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_codes WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("consume reset codes: %w", err)
	}
	return nil
}

// generateCode returns a uniformly random 6-digit code, leading zeros kept.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
