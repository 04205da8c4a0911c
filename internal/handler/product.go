package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/config"
	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/queue"
	"github.com/leemaz/marketplace-api/internal/repository"
	queue_publisher "github.com/leemaz/marketplace-api/internal/service"
)

// ProductHandler serves the listing transaction and public product
// browsing.
type ProductHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Shops    *repository.ShopRepo
	Products *repository.ProductRepo
	Credits  *repository.CreditRepo
}

func NewProductHandler(cfg config.Config, users *repository.UserRepo, shops *repository.ShopRepo, products *repository.ProductRepo, credits *repository.CreditRepo) *ProductHandler {
	if users == nil || shops == nil || products == nil || credits == nil {
		panic("nil repository passed to NewProductHandler")
	}
	return &ProductHandler{Cfg: cfg, Users: users, Shops: shops, Products: products, Credits: credits}
}

type createProductReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  uint32 `json:"price_cents"`
	Category    string `json:"category"`
	ShopID      uint64 `json:"shop_id"`
}

// CreateProduct handles POST /v1/products: the listing transaction.
// Eligibility checks (seller role via middleware, shop ownership, shop
// approval) run first and leave no state behind on failure. Then the
// fee debit, the listing_fee ledger entry and the product insert commit
// in a single transaction: a product cannot exist without its debit and
// a debit cannot survive without its product. The debit is conditional
// on sufficient balance, so two concurrent listings against an
// exact-fee balance cannot both pass.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	sellerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" || req.ShopID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, category and shop_id are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shop, err := h.Shops.GetByID(ctx, req.ShopID)
	if err != nil && !errors.Is(err, repository.ErrShopNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// missing and not-owned collapse into one answer so callers cannot
	// probe which shop ids exist
	if err != nil || shop.OwnerID != sellerID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found or not owned by you"})
	}
	if shop.Status != model.ShopApproved {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "shop is not approved"})
	}

	fee := h.Cfg.ListingFee

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

	if err := h.Users.DebitCreditsTx(ctx, tx, sellerID, fee); err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "insufficient credits"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "debit failed"})
	}
	entry := &model.CreditTransaction{
		UserID:      sellerID,
		Amount:      -fee,
		Reason:      model.ReasonListingFee,
		Description: "listing fee: " + req.Name,
	}
	if err := h.Credits.InsertTx(ctx, tx, entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ledger write failed"})
	}
	product := &model.Product{
		ShopID:      shop.ID,
		SellerID:    sellerID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		Category:    req.Category,
	}
	if err := h.Products.CreateTx(ctx, tx, product); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	go func() {
		_ = queue_publisher.PublishProductListed(context.Background(), queue.ProductListedEvent{
			ProductID:   product.ID,
			ProductName: product.Name,
			ShopID:      product.ShopID,
			SellerID:    product.SellerID,
			PriceCents:  product.PriceCents,
			FeeCredits:  fee,
			ListedAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}()

	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /v1/products/:id.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	p, err := h.Products.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// ListProducts handles GET /v1/products with optional ?category= and
// skip/limit pagination. Only products of approved shops appear.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	limit, offset := pageParams(c, 20, 100)
	category := strings.TrimSpace(c.QueryParam("category"))
	products, err := h.Products.List(c.Request().Context(), category, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": products})
}
