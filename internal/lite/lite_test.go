package lite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locar77i/wirekrak/internal/session"
	"github.com/locar77i/wirekrak/internal/wire"
)

func TestSubscribeTradeDeliversTypedCallback(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		_, _, err = conn.ReadMessage()
		require.NoError(t, err)
		_ = conn.WriteJSON(map[string]any{
			"method": "subscribe", "success": true, "req_id": 1,
			"result": map[string]any{"channel": "trade", "symbol": "BTC/USD"},
		})
		_ = conn.WriteJSON(map[string]any{
			"channel": "trade", "type": "update",
			"data": []map[string]any{{
				"symbol": "BTC/USD", "side": "sell", "price": 1, "qty": 1,
				"ord_type": "limit", "trade_id": 7, "timestamp": "2024-01-01T00:00:00Z",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	s := session.New(session.DefaultConfig(url), nil, nil)
	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(s.Close)

	var got atomic.Bool
	reqID, err := SubscribeTrade(s, []string{"BTC/USD"}, false, func(msg wire.TradeMessage) {
		got.Store(true)
	})
	require.NoError(t, err)
	require.NotEqual(t, session.InvalidReqID, reqID)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !got.Load() {
		s.Poll()
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, got.Load())
}

func TestSubscribeBookRejectsInvalidDepth(t *testing.T) {
	s := session.New(session.DefaultConfig("ws://example.invalid"), nil, nil)
	_, err := SubscribeBook(s, []string{"BTC/USD"}, 7, false, func(wire.BookMessage) {})
	assert.ErrorIs(t, err, wire.ErrInvalidDepth)
}
