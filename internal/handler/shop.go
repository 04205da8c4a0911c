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

// ShopHandler serves seller shop management and the public shop
// directory. Moderation lives in AdminHandler.
type ShopHandler struct {
	Shops    *repository.ShopRepo
	Products *repository.ProductRepo
}

func NewShopHandler(shops *repository.ShopRepo, products *repository.ProductRepo) *ShopHandler {
	if shops == nil || products == nil {
		panic("nil repository passed to NewShopHandler")
	}
	return &ShopHandler{Shops: shops, Products: products}
}

type createShopReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// CreateShop handles POST /v1/shops. The shop starts PENDING and stays
// invisible until an admin approves it. The one-shop-per-seller rule is
// the UNIQUE key on owner_id: a seller whose shop was rejected cannot
// register another one.
func (h *ShopHandler) CreateShop(c echo.Context) error {
	sellerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createShopReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Category == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and category are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shop := &model.Shop{
		OwnerID:     sellerID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
	}
	if err := h.Shops.Create(ctx, shop); err != nil {
		if errors.Is(err, repository.ErrShopExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already have a shop"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create shop failed"})
	}
	return c.JSON(http.StatusCreated, shop)
}

// GetMyShop handles GET /v1/shops/my and returns the seller's shop in
// any moderation state, so owners can see a pending or rejected shop.
func (h *ShopHandler) GetMyShop(c echo.Context) error {
	sellerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	shop, err := h.Shops.GetByOwner(c.Request().Context(), sellerID)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, shop)
}

// ListShops handles GET /v1/shops. Only approved shops are public.
func (h *ShopHandler) ListShops(c echo.Context) error {
	limit, offset := pageParams(c, 20, 100)
	shops, err := h.Shops.ListByStatus(c.Request().Context(), model.ShopApproved, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": shops})
}

// ListShopProducts handles GET /v1/shops/:id/products. The shop must be
// approved; pending and rejected shops do not exist to the public.
func (h *ShopHandler) ListShopProducts(c echo.Context) error {
	shopID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shop id"})
	}
	shop, err := h.Shops.GetByID(c.Request().Context(), shopID)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if shop.Status != model.ShopApproved {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shop not found"})
	}
	products, err := h.Products.ListByShop(c.Request().Context(), shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": products})
}
