package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leemaz/marketplace-api/internal/model"
)

// FavoriteRepo persists a user's favorite products.
type FavoriteRepo struct{ db *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

var (
	ErrAlreadyFavorite  = errors.New("product already in favorites")
	ErrFavoriteNotFound = errors.New("product not in favorites")
)

// Add marks a product as favorite. UNIQUE(user_id, product_id) makes
// a repeated add a conflict rather than a duplicate row.
func (r *FavoriteRepo) Add(ctx context.Context, userID, productID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, product_id) VALUES (?,?)`,
		userID, productID)
	if err != nil {
		if isDuplicate(err) {
			return ErrAlreadyFavorite
		}
		return err
	}
	return nil
}

// Remove unmarks a favorite.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, productID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id=? AND product_id=?`,
		userID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// ListProducts returns the still-active products a user has favorited,
// most recently favorited first.
func (r *FavoriteRepo) ListProducts(ctx context.Context, userID uint64) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.shop_id, p.seller_id, p.name, p.description, p.price_cents,
		        p.category, p.is_active, p.rating, p.review_count, p.created_at
		 FROM favorites f JOIN products p ON p.id = f.product_id
		 WHERE f.user_id=? AND p.is_active=1
		 ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
