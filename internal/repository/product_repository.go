package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leemaz/marketplace-api/internal/model"
)

// ProductRepo persists products. Creation only exists as a Tx variant
// because a product row must never appear without its listing-fee debit
// committing in the same transaction.
type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

var ErrProductNotFound = errors.New("product not found")

const productColumns = `id, shop_id, seller_id, name, description, price_cents,
	category, is_active, rating, review_count, created_at`

func scanProduct(scan func(dest ...any) error) (*model.Product, error) {
	p := &model.Product{}
	err := scan(&p.ID, &p.ShopID, &p.SellerID, &p.Name, &p.Description,
		&p.PriceCents, &p.Category, &p.IsActive, &p.Rating, &p.ReviewCount,
		&p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateTx inserts a product within the caller's transaction and fills
// in its ID. New products start active with zero rating and reviews.
func (r *ProductRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Product) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO products (shop_id, seller_id, name, description, price_cents, category)
		 VALUES (?,?,?,?,?,?)`,
		p.ShopID, p.SellerID, p.Name, p.Description, p.PriceCents, p.Category)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.IsActive = true
	return nil
}

// GetByID fetches an active product.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=? AND is_active=1 LIMIT 1`, id)
	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// List returns active products from approved shops, optionally filtered
// by category, newest first. Products whose shop was later rejected
// drop out of public listings via the join.
func (r *ProductRepo) List(ctx context.Context, category string, limit, offset int) ([]model.Product, error) {
	query := `SELECT p.id, p.shop_id, p.seller_id, p.name, p.description, p.price_cents,
		p.category, p.is_active, p.rating, p.review_count, p.created_at
		FROM products p JOIN shops s ON s.id = p.shop_id
		WHERE p.is_active=1 AND s.status=?`
	args := []any{model.ShopApproved}
	if category != "" {
		query += ` AND p.category=?`
		args = append(args, category)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
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

// ListByShop returns a shop's active products, newest first.
func (r *ProductRepo) ListByShop(ctx context.Context, shopID uint64) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE shop_id=? AND is_active=1 ORDER BY created_at DESC, id DESC`, shopID)
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

// UpdateRatingTx writes the re-aggregated rating and review count
// within the caller's transaction.
func (r *ProductRepo) UpdateRatingTx(ctx context.Context, tx *sql.Tx, productID uint64, rating float64, count uint32) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE products SET rating=?, review_count=? WHERE id=?`,
		rating, count, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// count moved from N to N, impossible after a successful insert
		// unless the product vanished mid-transaction
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id=?)`, productID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrProductNotFound
		}
	}
	return nil
}
