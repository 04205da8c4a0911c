package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/leemaz/marketplace-api/internal/config"
	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/repository"
	"github.com/leemaz/marketplace-api/internal/utils"
)

var testCfg = config.Config{
	JWTSecret:        "test-secret",
	AccessTTLMin:     15,
	RefreshTTLDays:   30,
	BcryptCost:       bcrypt.MinCost,
	ListingFee:       50,
	SignupBonus:      100,
	LockoutThreshold: 5,
	LockoutMinutes:   30,
}

func newAuthHandler(db *sql.DB) *AuthHandler {
	users := repository.NewUserRepo(db)
	return NewAuthHandler(testCfg, users,
		repository.NewTokenRepo(db),
		repository.NewVerificationRepo(db),
		repository.NewCreditRepo(db))
}

var userCols = []string{"id", "email", "password_hash", "full_name", "role", "language",
	"is_verified", "is_active", "credits", "failed_login_attempts", "last_failed_login",
	"created_at", "updated_at"}

func userRow(t *testing.T, password string, verified bool, failures int, lastFailed interface{}) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows(userCols).AddRow(
		9, "buyer@example.com", hash, "Buyer", model.RoleBuyer, "en",
		verified, true, 0, failures, lastFailed, time.Now(), time.Now())
}

func TestRegisterWeakPassword(t *testing.T) {
	db, _ := newMock(t)
	h := newAuthHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/register",
		`{"email":"a@b.com","password":"short","full_name":"A"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterAdminRoleDowngraded(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	// asking for the admin role silently lands on buyer
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("a@b.com", sqlmock.AnyArg(), "A", model.RoleBuyer, "en", false, int64(0)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM verification_codes WHERE user_id=?`)).
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO verification_codes`)).
		WithArgs(uint64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/register",
		`{"email":"a@b.com","password":"longenough","full_name":"A","role":"admin"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginLockedBeforePasswordCheck(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	recent := time.Now().UTC().Add(-5 * time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email=?`)).
		WithArgs("buyer@example.com").
		WillReturnRows(userRow(t, "correct-password", true, 5, recent))

	// the password is right, the lockout still wins
	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/login",
		`{"email":"buyer@example.com","password":"correct-password"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusLocked, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginLockoutExpired(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	old := time.Now().UTC().Add(-45 * time.Minute)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email=?`)).
		WithArgs("buyer@example.com").
		WillReturnRows(userRow(t, "correct-password", true, 5, old))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET failed_login_attempts = 0`)).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_tokens`)).
		WithArgs(uint64(9), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/login",
		`{"email":"buyer@example.com","password":"correct-password"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPasswordRecordsFailure(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email=?`)).
		WithArgs("buyer@example.com").
		WillReturnRows(userRow(t, "correct-password", true, 0, nil))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET failed_login_attempts = failed_login_attempts + 1`)).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/login",
		`{"email":"buyer@example.com","password":"wrong-password"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnverifiedAccount(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email=?`)).
		WithArgs("buyer@example.com").
		WillReturnRows(userRow(t, "correct-password", false, 0, nil))

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/login",
		`{"email":"buyer@example.com","password":"correct-password"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyEmailGrantsBonusOnce(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email=?`)).
		WithArgs("buyer@example.com").
		WillReturnRows(userRow(t, "correct-password", false, 0, nil))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM verification_codes WHERE user_id=? AND code=?`)).
		WithArgs(uint64(9), "123456").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE users SET is_verified=1, credits = credits + ? WHERE id=? AND is_verified=0`)).
		WithArgs(int64(100), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO credit_transactions`)).
		WithArgs(uint64(9), int64(100), model.ReasonVerificationBonus, nil, "email verification bonus").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/verify",
		`{"email":"buyer@example.com","code":"123456"}`)
	require.NoError(t, h.VerifyEmail(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), fmt.Sprintf("%d", testCfg.SignupBonus))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyEmailSecondTimeConflicts(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email=?`)).
		WithArgs("buyer@example.com").
		WillReturnRows(userRow(t, "correct-password", true, 0, nil))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM verification_codes WHERE user_id=? AND code=?`)).
		WithArgs(uint64(9), "123456").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// verified flag already set: the guard refuses a second bonus
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE users SET is_verified=1, credits = credits + ? WHERE id=? AND is_verified=0`)).
		WithArgs(int64(100), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/verify",
		`{"email":"buyer@example.com","code":"123456"}`)
	require.NoError(t, h.VerifyEmail(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyEmailWrongCode(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email=?`)).
		WithArgs("buyer@example.com").
		WillReturnRows(userRow(t, "correct-password", false, 0, nil))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM verification_codes WHERE user_id=? AND code=?`)).
		WithArgs(uint64(9), "000000").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/verify",
		`{"email":"buyer@example.com","code":"000000"}`)
	require.NoError(t, h.VerifyEmail(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyEmailUnknownAccountIndistinct(t *testing.T) {
	db, mock := newMock(t)
	h := newAuthHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email=?`)).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	// unknown email answers exactly like a wrong code
	c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/verify",
		`{"email":"ghost@example.com","code":"123456"}`)
	require.NoError(t, h.VerifyEmail(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid or expired code")
	require.NoError(t, mock.ExpectationsWereMet())
}
