package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// VerificationRepo stores the short-lived email verification codes.
type VerificationRepo struct{ db *sql.DB }

func NewVerificationRepo(db *sql.DB) *VerificationRepo { return &VerificationRepo{db: db} }

var ErrCodeInvalid = errors.New("invalid or expired verification code")

// Store saves a code for a user. Older codes for the same user are
// removed first so only the most recently mailed code works.
func (r *VerificationRepo) Store(ctx context.Context, userID uint64, code string, exp time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE user_id=?`, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_codes (user_id, code, expires_at) VALUES (?,?,?)`,
		userID, code, exp)
	return err
}

// ConsumeTx deletes a matching, unexpired code within the caller's
// transaction. Zero rows deleted means the code is wrong or expired.
// Running the delete in the same transaction as the verified-flag flip
// means a crash between the two cannot burn the code without verifying.
func (r *VerificationRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, userID uint64, code string) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM verification_codes WHERE user_id=? AND code=? AND expires_at > NOW()`,
		userID, code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCodeInvalid
	}
	return nil
}
