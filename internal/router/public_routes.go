package router

import (
	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints. These
// return only approved shops and their products, so guests can window-
// shop without an account; pending and rejected shops do not exist here.
func RegisterPublic(e *echo.Echo, s *handler.ShopHandler, p *handler.ProductHandler, r *handler.ReviewHandler) {
	// ---- Shops ----
	e.GET("/v1/shops", s.ListShops)
	e.GET("/v1/shops/:id/products", s.ListShopProducts)

	// ---- Products ----
	e.GET("/v1/products", p.ListProducts)
	e.GET("/v1/products/:id", p.GetProduct)
	e.GET("/v1/products/:id/reviews", r.ListReviews)
}
