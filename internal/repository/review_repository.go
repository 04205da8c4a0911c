package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leemaz/marketplace-api/internal/model"
)

// ReviewRepo persists reviews and computes the aggregates the product
// row denormalizes.
type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

var ErrAlreadyReviewed = errors.New("product already reviewed by this buyer")

// CreateTx inserts a review within the caller's transaction. The
// UNIQUE(product_id, buyer_id) key turns a duplicate submission into
// ErrAlreadyReviewed regardless of request interleaving.
func (r *ReviewRepo) CreateTx(ctx context.Context, tx *sql.Tx, rev *model.Review) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (product_id, buyer_id, rating, comment) VALUES (?,?,?,?)`,
		rev.ProductID, rev.BuyerID, rev.Rating, rev.Comment)
	if err != nil {
		if isDuplicate(err) {
			return ErrAlreadyReviewed
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rev.ID = uint64(id)
	return nil
}

// AggregateTx recomputes a product's mean rating (one decimal place)
// and review count from the full review set. Full re-aggregation is
// convergent: whatever the interleaving, the last committed transaction
// writes values consistent with all committed reviews.
func (r *ReviewRepo) AggregateTx(ctx context.Context, tx *sql.Tx, productID uint64) (float64, uint32, error) {
	var rating float64
	var count uint32
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(ROUND(AVG(rating), 1), 0), COUNT(*)
		 FROM reviews WHERE product_id=?`, productID).Scan(&rating, &count)
	return rating, count, err
}

// ListByProduct returns a page of a product's reviews, newest first.
func (r *ReviewRepo) ListByProduct(ctx context.Context, productID uint64, limit, offset int) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, buyer_id, rating, comment, created_at
		 FROM reviews WHERE product_id=?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews := []model.Review{}
	for rows.Next() {
		rev := model.Review{}
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.BuyerID, &rev.Rating,
			&rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
