package router

import (
	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/handler"
	"github.com/leemaz/marketplace-api/internal/middleware"
	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/repository"
)

// RegisterAdmin registers the admin panel under /v1/admin. Admin
// accounts only come from the createadmin command, so the role check is
// the whole gate.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, users *repository.UserRepo) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireActiveAccount(users),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Users ----
	g.GET("/users", a.ListUsers)
	g.PUT("/users/:id/active", a.SetUserActive)
	g.POST("/users/:id/credits", a.AdjustCredits)

	// ---- Shop moderation ----
	g.GET("/shops/pending", a.ListPendingShops)
	g.PUT("/shops/:id/approve", a.ApproveShop)
	g.PUT("/shops/:id/reject", a.RejectShop)
}
