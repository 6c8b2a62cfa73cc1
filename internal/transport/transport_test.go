package transport

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

func newEchoServer(t *testing.T, onServerConn func(*websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		onServerConn(conn)
	}))
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestOpenAndReceiveSingleFrameMessage(t *testing.T) {
	_, url := newEchoServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"hello":"world"}`))
	})

	tr := New(DefaultConfig(url), nil, nil)
	require.NoError(t, tr.Open(context.Background()))
	t.Cleanup(tr.Close)

	require.Eventually(t, func() bool {
		_, ok := tr.PeekMessage()
		return ok
	}, time.Second, 10*time.Millisecond)

	mb, ok := tr.PeekMessage()
	require.True(t, ok)
	assert.JSONEq(t, `{"hello":"world"}`, string(mb.Data))
	tr.ReleaseMessage()

	stats := tr.Stats()
	assert.Equal(t, uint64(1), stats.MessagesRx)
}

func TestSendBeforeOpenReturnsFalse(t *testing.T) {
	tr := New(DefaultConfig("ws://example.invalid"), nil, nil)
	assert.False(t, tr.Send([]byte("x")))
}

func TestOpenFailsAgainstUnreachableURL(t *testing.T) {
	tr := New(DefaultConfig("ws://127.0.0.1:1/does-not-exist"), nil, nil)
	err := tr.Open(context.Background())
	assert.ErrorIs(t, err, ErrOpenFailed)
}

func TestCloseSignalFiresExactlyOnceOnServerClose(t *testing.T) {
	_, url := newEchoServer(t, func(conn *websocket.Conn) {
		_ = conn.Close()
	})

	tr := New(DefaultConfig(url), nil, nil)
	require.NoError(t, tr.Open(context.Background()))

	select {
	case <-tr.CloseSignal():
	case <-time.After(time.Second):
		t.Fatal("close signal never fired")
	}

	// Close again from the caller side; must not panic or double-close.
	assert.NotPanics(t, tr.Close)
}

func TestOpenAfterCloseReturnsErrAlreadyClosed(t *testing.T) {
	_, url := newEchoServer(t, func(conn *websocket.Conn) {
		_ = conn.Close()
	})

	tr := New(DefaultConfig(url), nil, nil)
	require.NoError(t, tr.Open(context.Background()))
	tr.Close()

	err := tr.Open(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyClosed)
}
