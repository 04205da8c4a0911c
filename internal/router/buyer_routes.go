package router

import (
	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/handler"
	"github.com/leemaz/marketplace-api/internal/middleware"
	"github.com/leemaz/marketplace-api/internal/model"
	"github.com/leemaz/marketplace-api/internal/repository"
)

// RegisterBuyer registers buyer-scoped endpoints under /v1: reviews and
// favorites. Sellers and admins browsing the catalog get 403 here.
func RegisterBuyer(e *echo.Echo, r *handler.ReviewHandler, f *handler.FavoriteHandler, jwtSecret string, users *repository.UserRepo) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireActiveAccount(users),
		middleware.RequireRole(model.RoleBuyer),
	)

	// ---- Reviews ----
	g.POST("/products/:id/reviews", r.CreateReview)

	// ---- Favorites ----
	g.POST("/favorites/:id", f.AddFavorite)
	g.DELETE("/favorites/:id", f.RemoveFavorite)
	g.GET("/favorites", f.ListFavorites)
}

// RegisterShared registers endpoints open to every authenticated, active
// account regardless of role: the credit ledger and direct messaging.
func RegisterShared(e *echo.Echo, cr *handler.CreditHandler, ch *handler.ChatHandler, jwtSecret string, users *repository.UserRepo) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireActiveAccount(users),
	)

	// ---- Credits ----
	g.GET("/credits/balance", cr.Balance)
	g.GET("/credits/transactions", cr.Transactions)

	// ---- Chat ----
	g.POST("/chat/messages", ch.SendMessage)
	g.GET("/chat/conversations", ch.ListConversations)
	g.GET("/chat/messages/:id", ch.GetThread)
}
