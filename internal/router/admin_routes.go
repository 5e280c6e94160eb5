package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queuepro/internal/handler"
	"github.com/iliyamo/queuepro/internal/middleware"
	"github.com/iliyamo/queuepro/internal/model"
)

// RegisterAdmin registers queue management endpoints under /v1/admin.
// All routes require a valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/queue", h.Queue)
	g.POST("/queue/serve-next", h.ServeNext)
	g.POST("/tokens/:id/serve", h.Serve)
}
