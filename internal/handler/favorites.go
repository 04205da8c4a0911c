package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/repository"
)

// FavoriteHandler manages a buyer's favorite products.
type FavoriteHandler struct {
	Products  *repository.ProductRepo
	Favorites *repository.FavoriteRepo
}

func NewFavoriteHandler(products *repository.ProductRepo, favorites *repository.FavoriteRepo) *FavoriteHandler {
	if products == nil || favorites == nil {
		panic("nil repository passed to NewFavoriteHandler")
	}
	return &FavoriteHandler{Products: products, Favorites: favorites}
}

// AddFavorite handles POST /v1/favorites/:id.
func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	productID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	if _, err := h.Products.GetByID(c.Request().Context(), productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Favorites.Add(c.Request().Context(), userID, productID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFavorite) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "product already in favorites"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add favorite failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added to favorites"})
}

// RemoveFavorite handles DELETE /v1/favorites/:id.
func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	productID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	if err := h.Favorites.Remove(c.Request().Context(), userID, productID); err != nil {
		if errors.Is(err, repository.ErrFavoriteNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not in favorites"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove favorite failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListFavorites handles GET /v1/favorites.
func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	products, err := h.Favorites.ListProducts(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": products})
}
