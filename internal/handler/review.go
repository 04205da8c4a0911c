package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/repository"
)

// ReviewHandler serves buyer reviews and public review listings.
type ReviewHandler struct {
	Users    *repository.UserRepo
	Products *repository.ProductRepo
	Reviews  *repository.ReviewRepo
}

func NewReviewHandler(users *repository.UserRepo, products *repository.ProductRepo, reviews *repository.ReviewRepo) *ReviewHandler {
	if users == nil || products == nil || reviews == nil {
		panic("nil repository passed to NewReviewHandler")
	}
	return &ReviewHandler{Users: users, Products: products, Reviews: reviews}
}

type createReviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview handles POST /v1/products/:id/reviews. The insert and the
// rating re-aggregation commit in one transaction so the denormalized
// product rating never drifts from the review set it summarizes.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	buyerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	productID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req createReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	tx, err := h.Users.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	review := &model.Review{
		ProductID: productID,
		BuyerID:   buyerID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := h.Reviews.CreateTx(ctx, tx, review); err != nil {
		if errors.Is(err, repository.ErrAlreadyReviewed) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you have already reviewed this product"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	rating, count, err := h.Reviews.AggregateTx(ctx, tx, productID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "aggregate failed"})
	}
	if err := h.Products.UpdateRatingTx(ctx, tx, productID, rating, count); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rating update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	return c.JSON(http.StatusCreated, review)
}

// ListReviews handles GET /v1/products/:id/reviews.
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	productID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	limit, offset := pageParams(c, 20, 100)
	reviews, err := h.Reviews.ListByProduct(c.Request().Context(), productID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": reviews})
}
