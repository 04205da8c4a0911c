package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/leemaz/marketplace-api/internal/model"
)

// UserRepo provides persistence for users, including the credit-balance
// mutations that must run inside a caller-owned transaction alongside a
// ledger insert.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning several repositories.
func (r *UserRepo) DB() *sql.DB { return r.db }

var (
	ErrEmailExists         = errors.New("email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAlreadyVerified     = errors.New("user already verified")
)

const userColumns = `id, email, password_hash, full_name, role, language,
	is_verified, is_active, credits, failed_login_attempts, last_failed_login,
	created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var lastFailed sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
		&u.Language, &u.IsVerified, &u.IsActive, &u.Credits,
		&u.FailedLoginAttempts, &lastFailed, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if lastFailed.Valid {
		t := lastFailed.Time
		u.LastFailedLogin = &t
	}
	return u, nil
}

// Create inserts a user and fills in its ID. The password must already
// be hashed; email is normalized here so uniqueness is case-insensitive.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, full_name, role, language, is_verified, credits)
		 VALUES (?,?,?,?,?,?,?)`,
		u.Email, u.PasswordHash, u.FullName, u.Role, u.Language, u.IsVerified, u.Credits)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email=? LIMIT 1`, email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id)
	return scanUser(row)
}

// RecordLoginFailure bumps the consecutive-failure counter and stamps
// the failure time. Called on every wrong password, including during an
// active lockout, which is what makes the lockout window refresh.
func (r *UserRepo) RecordLoginFailure(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_login_attempts = failed_login_attempts + 1,
		 last_failed_login = NOW() WHERE id=?`, id)
	return err
}

// ResetLoginFailures clears the counter and lockout stamp after a
// successful login.
func (r *UserRepo) ResetLoginFailures(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET failed_login_attempts = 0, last_failed_login = NULL WHERE id=?`, id)
	return err
}

// SetActive toggles the soft-deactivation flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active=? WHERE id=?`, active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// either missing or unchanged; distinguish so admins get a 404 for typos
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id=?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
	}
	return nil
}

// List returns users for the admin panel, newest first.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []model.User{}
	for rows.Next() {
		u := model.User{}
		var lastFailed sql.NullTime
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
			&u.Language, &u.IsVerified, &u.IsActive, &u.Credits,
			&u.FailedLoginAttempts, &lastFailed, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if lastFailed.Valid {
			t := lastFailed.Time
			u.LastFailedLogin = &t
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DebitCreditsTx conditionally debits amount from a user's balance. The
// WHERE clause is the funds check: zero rows affected means the balance
// would have gone negative, and the caller must roll the surrounding
// transaction back. Two concurrent debits against an exact-fee balance
// therefore cannot both succeed.
func (r *UserRepo) DebitCreditsTx(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET credits = credits - ? WHERE id=? AND credits >= ?`,
		amount, userID, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInsufficientCredits
	}
	return nil
}

// AdjustCreditsTx applies a signed delta, refusing any change that
// would drive the balance negative. Callers are expected to have
// already confirmed the user exists.
func (r *UserRepo) AdjustCreditsTx(ctx context.Context, tx *sql.Tx, userID uint64, amount int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET credits = credits + ? WHERE id=? AND credits + ? >= 0`,
		amount, userID, amount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInsufficientCredits
	}
	return nil
}

// MarkVerifiedTx flips is_verified and grants the signup bonus in one
// statement. The is_verified=0 guard makes re-verification (and a
// second bonus) impossible even under concurrent requests.
func (r *UserRepo) MarkVerifiedTx(ctx context.Context, tx *sql.Tx, userID uint64, bonus int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE users SET is_verified=1, credits = credits + ? WHERE id=? AND is_verified=0`,
		bonus, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyVerified
	}
	return nil
}
