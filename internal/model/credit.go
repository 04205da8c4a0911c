package model

import "time"

// Ledger reasons stored in credit_transactions.reason.
const (
	ReasonVerificationBonus = "verification_bonus"
	ReasonListingFee        = "listing_fee"
	ReasonAdminGrant        = "admin_grant"
	ReasonAdminDeduct       = "admin_deduct"
)

// CreditTransaction is one immutable ledger entry. Amount is signed:
// grants and bonuses are positive, fees and deductions negative. The
// sum of a user's entries always equals users.credits because every
// balance mutation happens in the same SQL transaction as its ledger
// insert. Corrections are new offsetting entries; there is no update or
// delete path.
//
// ActorID is set when an admin triggered the movement and nil for
// system-originated entries (verification bonus, listing fee).
type CreditTransaction struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	Amount      int64     `json:"amount"`
	Reason      string    `json:"reason"`
	ActorID     *uint64   `json:"actor_id,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
