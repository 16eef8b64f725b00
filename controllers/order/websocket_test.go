package orderControllers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junaidrashid-git/marinetex-api/events"
	"github.com/junaidrashid-git/marinetex-api/models"
)

func TestHubBroadcastsOrderEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	r := gin.New()
	r.GET("/ws", hub.OrderWebSocketHandler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	order := &models.Order{ID: 3, OrderRef: "ref-3", TotalPrice: decimal.NewFromInt(515), Currency: "TRY"}
	require.NoError(t, hub.Publish(context.Background(), events.NewOrderEvent(events.TypeOrderPlaced, order)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got events.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, events.TypeOrderPlaced, got.Type)
	assert.Equal(t, "ref-3", got.OrderRef)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubDropsStalledClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", NewHub(nil).OrderWebSocketHandler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	// A client whose writer never drains its queue.
	hub := NewHub(nil)
	stalled := &client{conn: conn, send: make(chan []byte)}
	hub.clients[stalled] = struct{}{}

	order := &models.Order{OrderRef: "ref-9", TotalPrice: decimal.NewFromInt(1), Currency: "TRY"}
	done := make(chan struct{})
	go func() {
		_ = hub.Publish(context.Background(), events.NewOrderEvent(events.TypeOrderPlaced, order))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a stalled client")
	}
	assert.Zero(t, hub.Clients())
}
