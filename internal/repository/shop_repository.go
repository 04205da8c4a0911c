package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leemaz/marketplace-api/internal/model"
)

// ShopRepo persists shops and their moderation state.
type ShopRepo struct{ db *sql.DB }

func NewShopRepo(db *sql.DB) *ShopRepo { return &ShopRepo{db: db} }

var (
	ErrShopExists   = errors.New("seller already has a shop")
	ErrShopNotFound = errors.New("shop not found")
)

const shopColumns = `id, owner_id, name, description, category, status,
	moderated_by, moderated_at, rejection_reason, created_at`

func scanShop(scan func(dest ...any) error) (*model.Shop, error) {
	s := &model.Shop{}
	var modBy sql.NullInt64
	var modAt sql.NullTime
	err := scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.Category,
		&s.Status, &modBy, &modAt, &s.RejectionReason, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if modBy.Valid {
		v := uint64(modBy.Int64)
		s.ModeratedBy = &v
	}
	if modAt.Valid {
		t := modAt.Time
		s.ModeratedAt = &t
	}
	return s, nil
}

// Create inserts a shop in PENDING state. The UNIQUE key on owner_id is
// what enforces the one-shop-per-seller rule; relying on it instead of
// a pre-check closes the race between two concurrent create requests.
func (r *ShopRepo) Create(ctx context.Context, s *model.Shop) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shops (owner_id, name, description, category, status)
		 VALUES (?,?,?,?,?)`,
		s.OwnerID, s.Name, s.Description, s.Category, model.ShopPending)
	if err != nil {
		if isDuplicate(err) {
			return ErrShopExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.Status = model.ShopPending
	return nil
}

// GetByID fetches a shop by id.
func (r *ShopRepo) GetByID(ctx context.Context, id uint64) (*model.Shop, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE id=? LIMIT 1`, id)
	s, err := scanShop(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShopNotFound
	}
	return s, err
}

// GetByOwner fetches the shop owned by a seller, whatever its state.
func (r *ShopRepo) GetByOwner(ctx context.Context, ownerID uint64) (*model.Shop, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE owner_id=? LIMIT 1`, ownerID)
	s, err := scanShop(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShopNotFound
	}
	return s, err
}

// ListByStatus returns shops in the given moderation state, oldest
// first so the admin queue is FIFO.
func (r *ShopRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]model.Shop, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE status=?
		 ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`,
		status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shops := []model.Shop{}
	for rows.Next() {
		s, err := scanShop(rows.Scan)
		if err != nil {
			return nil, err
		}
		shops = append(shops, *s)
	}
	return shops, rows.Err()
}

// SetStatus performs the moderation transition as a check-and-set on
// the current state: the UPDATE only applies while the shop is still in
// fromStatus, so two admins racing on the same shop cannot interleave.
// Zero rows affected means the state moved underneath us.
func (r *ShopRepo) SetStatus(ctx context.Context, shopID uint64, fromStatus, toStatus string, moderatorID uint64, reason string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE shops SET status=?, moderated_by=?, moderated_at=NOW(), rejection_reason=?
		 WHERE id=? AND status=?`,
		toStatus, moderatorID, reason, shopID, fromStatus)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}
