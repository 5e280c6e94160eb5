package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/queuepro/internal/ticketing"
)

func TestWebSocketReceivesScopedEvents(t *testing.T) {
	h := New()
	e := echo.New()
	e.GET("/v1/ws", Handler(h))
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws?branch=hospital&service=opd"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, h.Publish(ctx, ticketing.Event{Type: ticketing.EventTokenCreated, Branch: "bank", ServiceID: "investment"}))
	require.NoError(t, h.Publish(ctx, ticketing.Event{Type: ticketing.EventTokenServed, Branch: "hospital", ServiceID: "opd", TokenNumber: "HOPD001-25122024"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev ticketing.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, ticketing.EventTokenServed, ev.Type)
	assert.Equal(t, "HOPD001-25122024", ev.TokenNumber)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
