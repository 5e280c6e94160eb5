package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queuepro/internal/catalog"
)

type CatalogHandler struct {
	Catalog *catalog.Catalog
}

// Branches lists branches and their services.  GET /v1/branches
func (h *CatalogHandler) Branches(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"branches": h.Catalog.Branches()})
}
