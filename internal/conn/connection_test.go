package conn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoServer(t *testing.T) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			_ = conn.WriteMessage(mt, data)
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestOpenTransitionsToConnectedAndEmitsSignal(t *testing.T) {
	url := newEchoServer(t)
	c := New(DefaultConfig(url), nil, nil)
	t.Cleanup(c.Close)

	require.NoError(t, c.Open(context.Background()))
	assert.Equal(t, Connected, c.State())
	assert.Equal(t, uint64(1), c.Epoch())

	sig, ok := c.PollSignal()
	require.True(t, ok)
	assert.Equal(t, SignalConnected, sig)

	_, ok = c.PollSignal()
	assert.False(t, ok)
}

func TestOpenFailureIsReturnedDirectlyAndStateStaysIdle(t *testing.T) {
	c := New(DefaultConfig("ws://127.0.0.1:1/nope"), nil, nil)
	err := c.Open(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Idle, c.State())
}

func TestForceCloseTriggersDisconnectAndRetrySignals(t *testing.T) {
	url := newEchoServer(t)
	cfg := DefaultConfig(url)
	c := New(cfg, nil, nil)
	t.Cleanup(c.Close)

	require.NoError(t, c.Open(context.Background()))
	_, _ = c.PollSignal() // drain Connected

	c.ForceClose()

	require.Eventually(t, func() bool {
		sig, ok := c.PollSignal()
		return ok && sig == SignalDisconnected
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		sig, ok := c.PollSignal()
		return ok && sig == SignalRetryImmediate
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		c.Poll()
		return c.State() == Connected
	}, 2*time.Second, 10*time.Millisecond)
}

func TestIsIdleReflectsQueuedSignals(t *testing.T) {
	url := newEchoServer(t)
	c := New(DefaultConfig(url), nil, nil)
	t.Cleanup(c.Close)

	require.NoError(t, c.Open(context.Background()))
	assert.False(t, c.IsIdle()) // Connected signal still queued

	_, _ = c.PollSignal()
	assert.True(t, c.IsIdle())
}

func TestCloseIsIdempotent(t *testing.T) {
	url := newEchoServer(t)
	c := New(DefaultConfig(url), nil, nil)
	require.NoError(t, c.Open(context.Background()))

	assert.NotPanics(t, func() {
		c.Close()
		c.Close()
	})
	assert.Equal(t, Closed, c.State())
}

func TestSendReturnsFalseWhenNotConnected(t *testing.T) {
	c := New(DefaultConfig("ws://127.0.0.1:1/nope"), nil, nil)
	assert.False(t, c.Send([]byte("x")))
}
