package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness checks from load balancers.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
