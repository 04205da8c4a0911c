package model

import "time"

// Review mirrors the `reviews` table. A buyer may leave at most one
// review per product (UNIQUE(product_id, buyer_id)). Rating is an
// integer between 1 and 5.
type Review struct {
	ID        uint64    `json:"id"`
	ProductID uint64    `json:"product_id"`
	BuyerID   uint64    `json:"buyer_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
