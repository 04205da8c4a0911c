// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names. One durable queue per event family keeps the consumer
// trivial; there is no fan-out requirement.
const (
	UserVerifiedQueue  = "user.verified"
	ShopModeratedQueue = "shop.moderated"
	ProductListedQueue = "product.listed"
)

// UserVerifiedEvent is published after an email verification succeeds.
// The notification consumer turns it into the "welcome, you received
// your bonus" message.
type UserVerifiedEvent struct {
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Language   string `json:"language"`
	Bonus      int64  `json:"bonus_credits"`
	VerifiedAt string `json:"verified_at"`
}

// ShopModeratedEvent is published when an admin approves or rejects a
// shop, so the owner can be notified without the request waiting on it.
type ShopModeratedEvent struct {
	ShopID      uint64 `json:"shop_id"`
	ShopName    string `json:"shop_name"`
	OwnerID     uint64 `json:"owner_id"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	ModeratorID uint64 `json:"moderator_id"`
	ModeratedAt string `json:"moderated_at"`
}

// ProductListedEvent is published after a listing transaction commits.
type ProductListedEvent struct {
	ProductID   uint64 `json:"product_id"`
	ProductName string `json:"product_name"`
	ShopID      uint64 `json:"shop_id"`
	SellerID    uint64 `json:"seller_id"`
	PriceCents  uint32 `json:"price_cents"`
	FeeCredits  int64  `json:"fee_credits"`
	ListedAt    string `json:"listed_at"`
}
