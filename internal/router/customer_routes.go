package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queuepro/internal/handler"
	"github.com/iliyamo/queuepro/internal/middleware"
	"github.com/iliyamo/queuepro/internal/model"
)

// RegisterCustomer registers the endpoints a signed-in user calls: taking
// tokens, checking them and booking bank appointments.  Admins may call
// them too.  limiter guards token issuance only.
func RegisterCustomer(e *echo.Echo, t *handler.TokenHandler, a *handler.AppointmentHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	jwt := middleware.JWTAuth(jwtSecret)
	roles := middleware.RequireRole(model.RoleUser, model.RoleAdmin)

	// JWTAuth must run first so the limiter can key on the user.
	e.POST("/v1/tokens", t.Issue, jwt, roles, limiter)
	e.GET("/v1/tokens/:number", t.Get, jwt, roles)
	e.GET("/v1/my-tokens", t.Mine, jwt, roles)

	e.POST("/v1/appointments", a.Create, jwt, roles)
	e.GET("/v1/my-appointments", a.Mine, jwt, roles)
}
