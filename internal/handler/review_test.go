package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/repository"
)

func productRow(id uint64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "shop_id", "seller_id", "name", "description",
		"price_cents", "category", "is_active", "rating", "review_count", "created_at"}).
		AddRow(id, 12, 7, "Olive Oil Soap", "hand made", 1500, "crafts", true, 0.0, 0, time.Now())
}

func newReviewHandler(db *sql.DB) *ReviewHandler {
	return NewReviewHandler(
		repository.NewUserRepo(db),
		repository.NewProductRepo(db),
		repository.NewReviewRepo(db),
	)
}

func TestCreateReviewReaggregatesRating(t *testing.T) {
	db, mock := newMock(t)
	h := newReviewHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id=? AND is_active=1`)).
		WithArgs(uint64(5)).
		WillReturnRows(productRow(5))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reviews`)).
		WithArgs(uint64(5), uint64(9), 3, "average").
		WillReturnResult(sqlmock.NewResult(21, 1))
	// ratings 5, 4 and this 3 average to 4.0 over 3 reviews
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(ROUND(AVG(rating), 1), 0), COUNT(*)`)).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"rating", "count"}).AddRow(4.0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET rating=?, review_count=? WHERE id=?`)).
		WithArgs(4.0, uint32(3), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/products/5/reviews", `{"rating":3,"comment":"average"}`)
	c.Set("user_id", uint64(9))
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.CreateReview(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var rev model.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rev))
	require.EqualValues(t, 21, rev.ID)
	require.Equal(t, 3, rev.Rating)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewDuplicateConflicts(t *testing.T) {
	db, mock := newMock(t)
	h := newReviewHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id=? AND is_active=1`)).
		WithArgs(uint64(5)).
		WillReturnRows(productRow(5))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reviews`)).
		WithArgs(uint64(5), uint64(9), 4, "again").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '5-9' for key 'reviews.product_id'"))
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/products/5/reviews", `{"rating":4,"comment":"again"}`)
	c.Set("user_id", uint64(9))
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.CreateReview(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReviewRatingOutOfRange(t *testing.T) {
	db, _ := newMock(t)
	h := newReviewHandler(db)

	for _, body := range []string{`{"rating":0}`, `{"rating":6}`} {
		c, rec := newJSONContext(t, http.MethodPost, "/v1/products/5/reviews", body)
		c.Set("user_id", uint64(9))
		c.SetParamNames("id")
		c.SetParamValues("5")

		require.NoError(t, h.CreateReview(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestCreateReviewUnknownProduct(t *testing.T) {
	db, mock := newMock(t)
	h := newReviewHandler(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id=? AND is_active=1`)).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "shop_id", "seller_id", "name", "description",
			"price_cents", "category", "is_active", "rating", "review_count", "created_at"}))

	c, rec := newJSONContext(t, http.MethodPost, "/v1/products/404/reviews", `{"rating":5}`)
	c.Set("user_id", uint64(9))
	c.SetParamNames("id")
	c.SetParamValues("404")

	require.NoError(t, h.CreateReview(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
