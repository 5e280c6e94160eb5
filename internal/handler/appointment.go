package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queuepro/internal/catalog"
	"github.com/iliyamo/queuepro/internal/middleware"
	"github.com/iliyamo/queuepro/internal/model"
	"github.com/iliyamo/queuepro/internal/monitoring"
	"github.com/iliyamo/queuepro/internal/ticketing"
)

// AppointmentHandler books bank visits and emails a confirmation.
type AppointmentHandler struct {
	Store    AppointmentStore
	Receipts ticketing.ReceiptSender // nil disables confirmations
	Now      func() time.Time

	pending sync.WaitGroup
}

func NewAppointmentHandler(store AppointmentStore, receipts ticketing.ReceiptSender, now func() time.Time) *AppointmentHandler {
	if now == nil {
		now = time.Now
	}
	return &AppointmentHandler{Store: store, Receipts: receipts, Now: now}
}

// Wait blocks until confirmations handed off so far have been attempted.
func (h *AppointmentHandler) Wait() { h.pending.Wait() }

type appointmentReq struct {
	Branch  string `json:"branch"`
	Date    string `json:"date"` // YYYY-MM-DD
	Time    string `json:"time"` // HH:MM
	Purpose string `json:"purpose"`
	Notes   string `json:"notes"`
}

// Create books an appointment.  Only the bank branch takes appointments.
// POST /v1/appointments
func (h *AppointmentHandler) Create(c echo.Context) error {
	id, ok := middleware.Identity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req appointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Branch == "" {
		req.Branch = catalog.Bank
	}
	if req.Branch != catalog.Bank {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   ticketing.KindInvalidScope,
			"message": "appointments are only available for the bank branch",
		})
	}
	req.Purpose = strings.TrimSpace(req.Purpose)
	if req.Purpose == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "purpose required"})
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:MM"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	a := model.Appointment{
		OwnerID:   id.UserID,
		Branch:    req.Branch,
		Date:      req.Date,
		Time:      req.Time,
		Purpose:   req.Purpose,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: h.Now().UTC(),
	}
	if err := h.Store.Create(ctx, &a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create appointment failed"})
	}
	h.confirm(ticketing.Receipt{
		Kind:            ticketing.ReceiptAppointment,
		OwnerName:       id.Name,
		OwnerEmail:      id.Email,
		Branch:          a.Branch,
		IssuedAt:        a.CreatedAt.Format(time.RFC3339),
		AppointmentDate: a.Date,
		AppointmentTime: a.Time,
		Purpose:         a.Purpose,
	})
	return c.JSON(http.StatusCreated, a)
}

// confirm sends r in the background.  Failures are logged only; the
// booking already succeeded.
func (h *AppointmentHandler) confirm(r ticketing.Receipt) {
	if h.Receipts == nil || r.OwnerEmail == "" {
		return
	}
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.Receipts.SendReceipt(ctx, r); err != nil {
			monitoring.TrackSideEffectFailure("receipt")
			log.Printf("handler: appointment confirmation to %s: %v", r.OwnerEmail, err)
		}
	}()
}

// Mine lists the caller's appointments.  GET /v1/my-appointments
func (h *AppointmentHandler) Mine(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	list, err := h.Store.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list appointments failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": list})
}
