package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queuepro/internal/ticketing"
)

// AdminHandler serves queue management for admins.
type AdminHandler struct {
	Svc *ticketing.Service
}

func NewAdminHandler(svc *ticketing.Service) *AdminHandler {
	return &AdminHandler{Svc: svc}
}

// Queue lists every token of a scope with live positions.
// GET /v1/admin/queue?branch=&service=
func (h *AdminHandler) Queue(c echo.Context) error {
	branch, service := c.QueryParam("branch"), c.QueryParam("service")

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	tokens, err := h.Svc.Queue(ctx, branch, service)
	if err != nil {
		return queueError(c, err)
	}
	waiting := 0
	for _, t := range tokens {
		if t.IsWaiting() {
			waiting++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"branch":     branch,
		"service_id": service,
		"waiting":    waiting,
		"tokens":     tokens,
	})
}

// ServeNext serves the head of a scope.  POST /v1/admin/queue/serve-next
func (h *AdminHandler) ServeNext(c echo.Context) error {
	var req issueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	adv, err := h.Svc.ServeNext(ctx, strings.TrimSpace(req.Branch), strings.TrimSpace(req.ServiceID))
	if err != nil {
		return queueError(c, err)
	}
	return c.JSON(http.StatusOK, adv)
}

// Serve serves a specific token.  POST /v1/admin/tokens/:id/serve
func (h *AdminHandler) Serve(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	adv, err := h.Svc.Serve(ctx, c.Param("id"))
	if err != nil {
		return queueError(c, err)
	}
	return c.JSON(http.StatusOK, adv)
}
