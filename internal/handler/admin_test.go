package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/repository"
)

func newAdminHandler(db *sql.DB) *AdminHandler {
	return NewAdminHandler(
		repository.NewUserRepo(db),
		repository.NewShopRepo(db),
		repository.NewCreditRepo(db),
	)
}

func TestAdjustCreditsDeduct(t *testing.T) {
	db, mock := newMock(t)
	h := newAdminHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id=?`)).
		WithArgs(uint64(9)).
		WillReturnRows(userRow(t, "irrelevant", true, 0, nil))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE users SET credits = credits + ? WHERE id=? AND credits + ? >= 0`)).
		WithArgs(int64(-30), uint64(9), int64(-30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO credit_transactions`)).
		WithArgs(uint64(9), int64(-30), model.ReasonAdminDeduct, uint64(1), "refund correction").
		WillReturnResult(sqlmock.NewResult(55, 1))
	mock.ExpectCommit()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/admin/users/9/credits",
		`{"amount":-30,"description":"refund correction"}`)
	c.Set("user_id", uint64(1))
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.AdjustCredits(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var entry model.CreditTransaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	require.Equal(t, model.ReasonAdminDeduct, entry.Reason)
	require.EqualValues(t, -30, entry.Amount)
	require.NotNil(t, entry.ActorID)
	require.EqualValues(t, 1, *entry.ActorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustCreditsZeroAmount(t *testing.T) {
	db, _ := newMock(t)
	h := newAdminHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/admin/users/9/credits", `{"amount":0}`)
	c.Set("user_id", uint64(1))
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.AdjustCredits(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjustCreditsWouldGoNegative(t *testing.T) {
	db, mock := newMock(t)
	h := newAdminHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id=?`)).
		WithArgs(uint64(9)).
		WillReturnRows(userRow(t, "irrelevant", true, 0, nil))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE users SET credits = credits + ? WHERE id=? AND credits + ? >= 0`)).
		WithArgs(int64(-500), uint64(9), int64(-500)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/admin/users/9/credits", `{"amount":-500}`)
	c.Set("user_id", uint64(1))
	c.SetParamNames("id")
	c.SetParamValues("9")

	require.NoError(t, h.AdjustCredits(c))
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectPendingShop(t *testing.T) {
	db, mock := newMock(t)
	h := newAdminHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM shops WHERE id=?`)).
		WithArgs(uint64(12)).
		WillReturnRows(shopRow(12, 7, model.ShopPending))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE shops SET status=?`)).
		WithArgs(model.ShopRejected, uint64(1), "spam", uint64(12), model.ShopPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shops WHERE id=?`)).
		WithArgs(uint64(12)).
		WillReturnRows(shopRow(12, 7, model.ShopRejected))

	c, rec := newJSONContext(t, http.MethodPut, "/v1/admin/shops/12/reject", `{"reason":"spam"}`)
	c.Set("user_id", uint64(1))
	c.SetParamNames("id")
	c.SetParamValues("12")

	require.NoError(t, h.RejectShop(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), model.ShopRejected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRejectedShopIsTerminal(t *testing.T) {
	db, mock := newMock(t)
	h := newAdminHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM shops WHERE id=?`)).
		WithArgs(uint64(12)).
		WillReturnRows(shopRow(12, 7, model.ShopRejected))

	c, rec := newJSONContext(t, http.MethodPut, "/v1/admin/shops/12/approve", "")
	c.Set("user_id", uint64(1))
	c.SetParamNames("id")
	c.SetParamValues("12")

	require.NoError(t, h.ApproveShop(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveShopIdempotent(t *testing.T) {
	db, mock := newMock(t)
	h := newAdminHandler(db)

	// repeating the same decision is a no-op, no UPDATE issued
	mock.ExpectQuery(regexp.QuoteMeta(`FROM shops WHERE id=?`)).
		WithArgs(uint64(12)).
		WillReturnRows(shopRow(12, 7, model.ShopApproved))

	c, rec := newJSONContext(t, http.MethodPut, "/v1/admin/shops/12/approve", "")
	c.Set("user_id", uint64(1))
	c.SetParamNames("id")
	c.SetParamValues("12")

	require.NoError(t, h.ApproveShop(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetUserActiveUnknownUser(t *testing.T) {
	db, mock := newMock(t)
	h := newAdminHandler(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_active=? WHERE id=?`)).
		WithArgs(false, uint64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE id=?)`)).
		WithArgs(uint64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	c, rec := newJSONContext(t, http.MethodPut, "/v1/admin/users/999/active", `{"is_active":false}`)
	c.Set("user_id", uint64(1))
	c.SetParamNames("id")
	c.SetParamValues("999")

	require.NoError(t, h.SetUserActive(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
