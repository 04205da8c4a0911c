package router

import (
	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/handler"
	"github.com/leemaz/marketplace-api/internal/middleware"
	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/repository"
)

// RegisterSeller registers seller-scoped endpoints under /v1. All routes
// require a valid JWT, the seller role and an active account.
func RegisterSeller(e *echo.Echo, s *handler.ShopHandler, p *handler.ProductHandler, jwtSecret string, users *repository.UserRepo) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireActiveAccount(users),
		middleware.RequireRole(model.RoleSeller),
	)

	// ---- Shops ----
	g.POST("/shops", s.CreateShop)
	g.GET("/shops/my", s.GetMyShop)

	// ---- Products ----
	g.POST("/products", p.CreateProduct)
}
