package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/queuepro/internal/handler"
	"github.com/iliyamo/queuepro/internal/middleware"
	"github.com/iliyamo/queuepro/internal/model"
)

// RegisterRoutes registers routes that do not require authentication:
// the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers session endpoints under /v1/auth, the identity
// endpoint and admin account creation.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh token in the body or a bearer header, so it
	// stays outside JWTAuth.
	g.POST("/logout", a.Logout)

	jwt := middleware.JWTAuth(jwtSecret)
	e.GET("/v1/me", a.Me, jwt, middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	e.POST("/v1/admin/users", a.CreateAdmin, jwt, middleware.RequireRole(model.RoleAdmin))
}

// RegisterPublic registers unauthenticated endpoints: the branch catalog,
// fronted by the response cache, and the real-time WebSocket.
func RegisterPublic(e *echo.Echo, c *handler.CatalogHandler, ws echo.HandlerFunc, cache echo.MiddlewareFunc) {
	e.GET("/v1/branches", c.Branches, cache)
	e.GET("/v1/ws", ws)
}
