package model

import "time"

// Shop moderation states. A shop is created PENDING and only an admin
// moves it to APPROVED or REJECTED. REJECTED is terminal; an APPROVED
// shop may still be revoked to REJECTED.
const (
	ShopPending  = "PENDING"
	ShopApproved = "APPROVED"
	ShopRejected = "REJECTED"
)

// Shop mirrors the `shops` table. A seller owns at most one shop,
// enforced by a UNIQUE key on owner_id; the slot is not freed on
// rejection. Only APPROVED shops are publicly visible and only their
// owners may list products.
type Shop struct {
	ID              uint64     `json:"id"`
	OwnerID         uint64     `json:"owner_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Status          string     `json:"status"`
	ModeratedBy     *uint64    `json:"moderated_by,omitempty"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
