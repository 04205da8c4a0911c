package model

import "time"

// Role values stored in users.role. Admin accounts are created through
// the createadmin command, never through registration.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// ValidRole reports whether a role string is one a client may register
// with. Admin is deliberately excluded.
func ValidRole(r string) bool {
	return r == RoleBuyer || r == RoleSeller
}

// User represents an application user record as stored in the `users`
// table. Credits is the derived balance; every change to it is mirrored
// by a row in credit_transactions. Accounts are soft-deactivated via
// IsActive and never deleted, so shops, products and reviews keep valid
// owner references.
//
// Fields:
//  ID                  – primary key identifier of the user.
//  Email               – unique, lowercased email address.
//  PasswordHash        – bcrypt hashed password.
//  FullName            – display name.
//  Role                – buyer, seller or admin.
//  Language            – preferred locale (e.g. "en", "ar").
//  IsVerified          – set once the email verification code is consumed.
//  IsActive            – admin-controlled; false blocks all authenticated calls.
//  Credits             – current credit balance, never negative.
//  FailedLoginAttempts – consecutive failed logins, reset on success.
//  LastFailedLogin     – timestamp of the most recent failure (nullable).
type User struct {
	ID                  uint64     `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	FullName            string     `json:"full_name"`
	Role                string     `json:"role"`
	Language            string     `json:"language"`
	IsVerified          bool       `json:"is_verified"`
	IsActive            bool       `json:"is_active"`
	Credits             int64      `json:"credits"`
	FailedLoginAttempts int        `json:"-"`
	LastFailedLogin     *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Locked reports whether the account is inside its lockout window at the
// given instant. The window is measured from the most recent failure, so
// a failed attempt during lockout extends it.
func (u *User) Locked(now time.Time, threshold int, window time.Duration) bool {
	if u.FailedLoginAttempts < threshold || u.LastFailedLogin == nil {
		return false
	}
	return now.Sub(*u.LastFailedLogin) < window
}
