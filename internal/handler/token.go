package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queuepro/internal/middleware"
	"github.com/iliyamo/queuepro/internal/model"
	"github.com/iliyamo/queuepro/internal/ticketing"
)

// TokenHandler serves the user-facing token endpoints.
type TokenHandler struct {
	Svc *ticketing.Service
}

func NewTokenHandler(svc *ticketing.Service) *TokenHandler {
	return &TokenHandler{Svc: svc}
}

type issueReq struct {
	Branch    string `json:"branch"`
	ServiceID string `json:"service_id"`
}

// Issue creates a token for the caller.  POST /v1/tokens
func (h *TokenHandler) Issue(c echo.Context) error {
	id, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req issueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	view, err := h.Svc.Issue(ctx, ticketing.IssueRequest{
		Owner:     ticketing.Owner{ID: id.UserID, Name: id.Name, Email: id.Email},
		Branch:    strings.TrimSpace(req.Branch),
		ServiceID: strings.TrimSpace(req.ServiceID),
	})
	if err != nil {
		return queueError(c, err)
	}
	return c.JSON(http.StatusCreated, view)
}

// Get returns a token with its live position.  Only the owner and admins
// may read it.  GET /v1/tokens/:number
func (h *TokenHandler) Get(c echo.Context) error {
	id, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	view, err := h.Svc.Get(ctx, c.Param("number"))
	if err != nil {
		return queueError(c, err)
	}
	if view.OwnerID != id.UserID && id.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, view)
}

// Mine lists the caller's tokens, newest first.  GET /v1/my-tokens
func (h *TokenHandler) Mine(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	views, err := h.Svc.ListForOwner(ctx, uid)
	if err != nil {
		return queueError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tokens": views})
}
