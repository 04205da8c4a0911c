// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors. Entity-specific sentinels (ErrEmailExists,
// ErrShopNotFound, ...) live next to the repository that produces them.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when an update loses a check-and-set race or
// cannot proceed due to conflicting state. Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062). Uniqueness rules are enforced at the store level, so
// this is how concurrent inserts of the same email, shop owner, review
// or favorite lose the race.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
