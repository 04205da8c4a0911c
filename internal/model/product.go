package model

import "time"

// Product mirrors the `products` table. SellerID denormalizes the shop's
// owner so credit and review queries avoid a join. Rating and
// ReviewCount are derived from the reviews table and recomputed inside
// the review transaction. A product row only ever comes into existence
// through the listing transaction, so its presence implies a matching
// listing_fee ledger entry.
type Product struct {
	ID          uint64    `json:"id"`
	ShopID      uint64    `json:"shop_id"`
	SellerID    uint64    `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  uint32    `json:"price_cents"`
	Category    string    `json:"category"`
	IsActive    bool      `json:"is_active"`
	Rating      float64   `json:"rating"`
	ReviewCount uint32    `json:"review_count"`
	CreatedAt   time.Time `json:"created_at"`
}
