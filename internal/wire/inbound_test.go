package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySuccessAck(t *testing.T) {
	raw := []byte(`{"method":"subscribe","success":true,"req_id":42,
		"result":{"channel":"trade","symbol":"BTC/USD","snapshot":true,"warnings":[]},
		"time_in":"...","time_out":"..."}`)

	kind, v, err := Classify(raw)
	require.NoError(t, err)
	require.Equal(t, KindAck, kind)

	ack := v.(Ack)
	assert.True(t, ack.Success)
	assert.Equal(t, int64(42), ack.ReqID)
	assert.Equal(t, ChannelTrade, ack.Result.Channel)
	assert.Equal(t, "BTC/USD", ack.Result.Symbol)
}

func TestClassifyFailureAckRoutesAsRejection(t *testing.T) {
	raw := []byte(`{"method":"subscribe","success":false,"req_id":42,"error":"Symbol not found"}`)

	kind, v, err := Classify(raw)
	require.NoError(t, err)
	require.Equal(t, KindRejection, kind)

	rej := v.(RejectionNotice)
	assert.Equal(t, "Symbol not found", rej.Error)
	assert.True(t, rej.HasReqID)
	assert.Equal(t, int64(42), rej.ReqID)
	assert.False(t, rej.HasSymbol)
}

func TestClassifyStatusUpdate(t *testing.T) {
	raw := []byte(`{"channel":"status","type":"update","data":[{"system":"online","api_version":"v2","connection_id":123,"version":"2.0.1"}]}`)

	kind, v, err := Classify(raw)
	require.NoError(t, err)
	require.Equal(t, KindStatus, kind)

	st := v.(StatusUpdate)
	require.Len(t, st.Data, 1)
	assert.Equal(t, "online", st.Data[0].System)
	assert.Equal(t, int64(123), st.Data[0].ConnectionID)
}

func TestClassifyBookSnapshot(t *testing.T) {
	raw := []byte(`{"channel":"book","type":"snapshot","data":[{"symbol":"BTC/USD","asks":[{"price":50000.0,"qty":1.5}],"bids":[{"price":49900.0,"qty":2.0}],"checksum":123456}]}`)

	kind, v, err := Classify(raw)
	require.NoError(t, err)
	require.Equal(t, KindData, kind)

	book := v.(BookMessage)
	require.Len(t, book.Data, 1)
	assert.Equal(t, "snapshot", book.Type)
	assert.Equal(t, int64(123456), book.Data[0].Checksum)
	require.Len(t, book.Data[0].Asks, 1)
	require.Len(t, book.Data[0].Bids, 1)
	assert.Equal(t, 50000.0, book.Data[0].Asks[0].Price)
}

func TestClassifyPongIsLenientAboutSuccess(t *testing.T) {
	raw := []byte(`{"method":"pong","req_id":5}`)

	kind, v, err := Classify(raw)
	require.NoError(t, err)
	require.Equal(t, KindPong, kind)

	p := v.(Pong)
	assert.False(t, p.HasSuccess)
	assert.Equal(t, int64(5), p.ReqID)
}

func TestClassifyTopLevelRejectionNotice(t *testing.T) {
	raw := []byte(`{"error":"Already subscribed","req_id":7,"symbol":"ETH/USD","time_in":"...","time_out":"..."}`)

	kind, v, err := Classify(raw)
	require.NoError(t, err)
	require.Equal(t, KindRejection, kind)

	rej := v.(RejectionNotice)
	assert.Equal(t, "Already subscribed", rej.Error)
	assert.True(t, rej.HasSymbol)
	assert.Equal(t, "ETH/USD", rej.Symbol)
}

func TestClassifyMalformedBookUpdateStillParsesButCallerDiscardsEmptySides(t *testing.T) {
	raw := []byte(`{"channel":"book","type":"update","data":[{"symbol":"BTC/USD","checksum":1,"timestamp":"..."}]}`)

	kind, v, err := Classify(raw)
	require.NoError(t, err)
	require.Equal(t, KindData, kind)

	book := v.(BookMessage)
	require.Len(t, book.Data, 1)
	assert.Empty(t, book.Data[0].Bids)
	assert.Empty(t, book.Data[0].Asks)
}

func TestClassifyUnrecognizedShapeReturnsError(t *testing.T) {
	raw := []byte(`{"foo":"bar"}`)

	_, _, err := Classify(raw)
	assert.ErrorIs(t, err, ErrUnrecognizedMessage)
}

func TestClassifyInvalidJSONReturnsError(t *testing.T) {
	_, _, err := Classify([]byte(`not json`))
	assert.Error(t, err)
}
