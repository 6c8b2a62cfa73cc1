package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeSubscribeRequestEncodesCanonicalEnvelope(t *testing.T) {
	req, err := NewTradeSubscribeRequest([]string{"BTC/USD"}, false)
	require.NoError(t, err)
	req.SetReqID(1)

	buf := make([]byte, req.MaxEncodedLen())
	n, err := req.Encode(buf)
	require.NoError(t, err)

	assert.JSONEq(t, `{"method":"subscribe","params":{"channel":"trade","symbol":["BTC/USD"]},"req_id":1}`, string(buf[:n]))
}

func TestTradeSubscribeRequestRejectsEmptySymbols(t *testing.T) {
	_, err := NewTradeSubscribeRequest(nil, false)
	assert.ErrorIs(t, err, ErrEmptySymbols)
}

func TestBookSubscribeRequestRejectsInvalidDepth(t *testing.T) {
	_, err := NewBookSubscribeRequest([]string{"BTC/USD"}, 7, true)
	assert.ErrorIs(t, err, ErrInvalidDepth)
}

func TestBookSubscribeRequestEncodesDepthAndSnapshot(t *testing.T) {
	req, err := NewBookSubscribeRequest([]string{"BTC/USD"}, 25, true)
	require.NoError(t, err)
	req.SetReqID(7)

	buf := make([]byte, req.MaxEncodedLen())
	n, err := req.Encode(buf)
	require.NoError(t, err)

	assert.JSONEq(t, `{"method":"subscribe","params":{"channel":"book","symbol":["BTC/USD"],"depth":25,"snapshot":true},"req_id":7}`, string(buf[:n]))
}

func TestEncodeReturnsErrBufferTooSmall(t *testing.T) {
	req, err := NewTradeSubscribeRequest([]string{"BTC/USD"}, false)
	require.NoError(t, err)
	req.SetReqID(1)

	buf := make([]byte, 2)
	_, err = req.Encode(buf)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestPingRequestEncodesMethodOnly(t *testing.T) {
	req := NewPingRequest()
	req.SetReqID(9)

	buf := make([]byte, req.MaxEncodedLen())
	n, err := req.Encode(buf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"ping","req_id":9}`, string(buf[:n]))
}
