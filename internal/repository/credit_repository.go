package repository

import (
	"context"
	"database/sql"

	"github.com/leemaz/marketplace-api/internal/model"
)

// CreditRepo is the append-only ledger of credit movements. There is no
// update or delete method on purpose: corrections are new offsetting
// entries, and the sum of a user's entries must always equal the
// balance column on users. Inserts therefore only happen inside the
// same transaction that mutates the balance.
type CreditRepo struct{ db *sql.DB }

func NewCreditRepo(db *sql.DB) *CreditRepo { return &CreditRepo{db: db} }

// LedgerPageSize is how many entries a single history page returns.
const LedgerPageSize = 50

// InsertTx appends a ledger entry within the caller's transaction and
// fills in its ID.
func (r *CreditRepo) InsertTx(ctx context.Context, tx *sql.Tx, e *model.CreditTransaction) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO credit_transactions (user_id, amount, reason, actor_id, description)
		 VALUES (?,?,?,?,?)`,
		e.UserID, e.Amount, e.Reason, e.ActorID, e.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListByUser returns one page of a user's ledger, newest first. Pages
// are 1-based.
func (r *CreditRepo) ListByUser(ctx context.Context, userID uint64, page int) ([]model.CreditTransaction, error) {
	if page < 1 {
		page = 1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, reason, actor_id, description, created_at
		 FROM credit_transactions WHERE user_id=?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, LedgerPageSize, (page-1)*LedgerPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []model.CreditTransaction{}
	for rows.Next() {
		e := model.CreditTransaction{}
		var actor sql.NullInt64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Reason, &actor,
			&e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		if actor.Valid {
			a := uint64(actor.Int64)
			e.ActorID = &a
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumByUser returns the sum of all ledger amounts for a user. Used by
// reconciliation checks: the result must equal users.credits.
func (r *CreditRepo) SumByUser(ctx context.Context, userID uint64) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM credit_transactions WHERE user_id=?`,
		userID).Scan(&sum)
	return sum, err
}
