package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/queuepro/internal/ticketing"
)

var kindStatus = map[string]int{
	ticketing.KindInvalidScope:    http.StatusBadRequest,
	ticketing.KindNotFound:        http.StatusNotFound,
	ticketing.KindAlreadyTerminal: http.StatusConflict,
	ticketing.KindDuplicateNumber: http.StatusConflict,
	ticketing.KindEmptyQueue:      http.StatusNotFound,
	ticketing.KindInternal:        http.StatusInternalServerError,
}

// queueError writes err as {"error": kind, "message": text}.  Internal
// errors are logged and their text is not exposed.
func queueError(c echo.Context, err error) error {
	kind := ticketing.KindOf(err)
	msg := err.Error()
	if kind == ticketing.KindInternal {
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		msg = "internal error"
	}
	return c.JSON(kindStatus[kind], echo.Map{"error": kind, "message": msg})
}
