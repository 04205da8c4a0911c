package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/leemaz/marketplace-api/internal/handler"
	"github.com/leemaz/marketplace-api/internal/middleware"
	"github.com/leemaz/marketplace-api/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes and the authenticated
// profile endpoint. Unauthenticated operations live under /v1/auth and
// carry the rate limiter so credential stuffing burns through the token
// bucket before it burns through passwords. Protected endpoints live
// under /v1 behind JWT validation and the active-account check.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, users *repository.UserRepo, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/verify", a.VerifyEmail)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body, so it does not need a
	// valid access token: an expired session can still be revoked.
	g.POST("/logout", a.Logout)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireActiveAccount(users),
	)
	auth.GET("/me", a.Me)
}
