package wire

import "encoding/json"

// Request is satisfied by every outbound subscribe/unsubscribe/ping envelope.
// Session mints and assigns the ReqID before Encode is ever called; any
// caller-supplied id is overwritten per the data model's ReqId contract.
type Request interface {
	Channel() Channel
	Method() Method
	Symbols() []string
	ReqID() int64
	SetReqID(id int64)

	// MaxEncodedLen returns a conservative upper bound on the serialized
	// size, so callers can size their buffer before calling Encode.
	MaxEncodedLen() int

	// Encode writes the canonical JSON envelope into buf and returns the
	// number of bytes written. Returns ErrBufferTooSmall if buf is undersized.
	Encode(buf []byte) (int, error)
}

const baseEnvelopeOverhead = 128 // envelope keys, longest method/channel, depth, snapshot, 20-digit req_id, plus slack
const perSymbolOverhead = 24    // `"XXXXXXXXXXXXXXXXXXXX",`

func encodeInto(buf []byte, v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	if len(data) > len(buf) {
		return 0, ErrBufferTooSmall
	}
	return copy(buf, data), nil
}

// TradeSubscribeRequest subscribes to the trade channel for a set of symbols.
type TradeSubscribeRequest struct {
	Symbol   []string
	Snapshot bool
	reqID    int64
}

// NewTradeSubscribeRequest validates symbols and builds a subscribe request.
func NewTradeSubscribeRequest(symbols []string, snapshot bool) (*TradeSubscribeRequest, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptySymbols
	}
	return &TradeSubscribeRequest{Symbol: append([]string(nil), symbols...), Snapshot: snapshot}, nil
}

func (r *TradeSubscribeRequest) Channel() Channel   { return ChannelTrade }
func (r *TradeSubscribeRequest) Method() Method     { return MethodSubscribe }
func (r *TradeSubscribeRequest) Symbols() []string  { return r.Symbol }
func (r *TradeSubscribeRequest) ReqID() int64       { return r.reqID }
func (r *TradeSubscribeRequest) SetReqID(id int64)  { r.reqID = id }
func (r *TradeSubscribeRequest) MaxEncodedLen() int {
	return baseEnvelopeOverhead + perSymbolOverhead*len(r.Symbol)
}

func (r *TradeSubscribeRequest) Encode(buf []byte) (int, error) {
	type params struct {
		Channel  string   `json:"channel"`
		Symbol   []string `json:"symbol"`
		Snapshot bool     `json:"snapshot,omitempty"`
	}
	type envelope struct {
		Method string `json:"method"`
		Params params `json:"params"`
		ReqID  int64  `json:"req_id"`
	}
	return encodeInto(buf, envelope{
		Method: string(MethodSubscribe),
		Params: params{Channel: string(ChannelTrade), Symbol: r.Symbol, Snapshot: r.Snapshot},
		ReqID:  r.reqID,
	})
}

// TradeUnsubscribeRequest unsubscribes from the trade channel for a set of symbols.
type TradeUnsubscribeRequest struct {
	Symbol []string
	reqID  int64
}

// NewTradeUnsubscribeRequest validates symbols and builds an unsubscribe request.
func NewTradeUnsubscribeRequest(symbols []string) (*TradeUnsubscribeRequest, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptySymbols
	}
	return &TradeUnsubscribeRequest{Symbol: append([]string(nil), symbols...)}, nil
}

func (r *TradeUnsubscribeRequest) Channel() Channel  { return ChannelTrade }
func (r *TradeUnsubscribeRequest) Method() Method    { return MethodUnsubscribe }
func (r *TradeUnsubscribeRequest) Symbols() []string { return r.Symbol }
func (r *TradeUnsubscribeRequest) ReqID() int64      { return r.reqID }
func (r *TradeUnsubscribeRequest) SetReqID(id int64) { r.reqID = id }
func (r *TradeUnsubscribeRequest) MaxEncodedLen() int {
	return baseEnvelopeOverhead + perSymbolOverhead*len(r.Symbol)
}

func (r *TradeUnsubscribeRequest) Encode(buf []byte) (int, error) {
	type params struct {
		Channel string   `json:"channel"`
		Symbol  []string `json:"symbol"`
	}
	type envelope struct {
		Method string `json:"method"`
		Params params `json:"params"`
		ReqID  int64  `json:"req_id"`
	}
	return encodeInto(buf, envelope{
		Method: string(MethodUnsubscribe),
		Params: params{Channel: string(ChannelTrade), Symbol: r.Symbol},
		ReqID:  r.reqID,
	})
}

// BookSubscribeRequest subscribes to the book channel at a given depth.
type BookSubscribeRequest struct {
	Symbol   []string
	Depth    int
	Snapshot bool
	reqID    int64
}

// NewBookSubscribeRequest validates symbols and depth and builds a subscribe request.
func NewBookSubscribeRequest(symbols []string, depth int, snapshot bool) (*BookSubscribeRequest, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptySymbols
	}
	if !ValidDepth(depth) {
		return nil, ErrInvalidDepth
	}
	return &BookSubscribeRequest{Symbol: append([]string(nil), symbols...), Depth: depth, Snapshot: snapshot}, nil
}

func (r *BookSubscribeRequest) Channel() Channel   { return ChannelBook }
func (r *BookSubscribeRequest) Method() Method     { return MethodSubscribe }
func (r *BookSubscribeRequest) Symbols() []string  { return r.Symbol }
func (r *BookSubscribeRequest) ReqID() int64       { return r.reqID }
func (r *BookSubscribeRequest) SetReqID(id int64)  { r.reqID = id }
func (r *BookSubscribeRequest) MaxEncodedLen() int {
	return baseEnvelopeOverhead + perSymbolOverhead*len(r.Symbol)
}

func (r *BookSubscribeRequest) Encode(buf []byte) (int, error) {
	type params struct {
		Channel  string   `json:"channel"`
		Symbol   []string `json:"symbol"`
		Depth    int      `json:"depth,omitempty"`
		Snapshot bool     `json:"snapshot,omitempty"`
	}
	type envelope struct {
		Method string `json:"method"`
		Params params `json:"params"`
		ReqID  int64  `json:"req_id"`
	}
	return encodeInto(buf, envelope{
		Method: string(MethodSubscribe),
		Params: params{Channel: string(ChannelBook), Symbol: r.Symbol, Depth: r.Depth, Snapshot: r.Snapshot},
		ReqID:  r.reqID,
	})
}

// BookUnsubscribeRequest unsubscribes from the book channel.
type BookUnsubscribeRequest struct {
	Symbol []string
	Depth  int
	reqID  int64
}

// NewBookUnsubscribeRequest validates symbols and depth and builds an unsubscribe request.
func NewBookUnsubscribeRequest(symbols []string, depth int) (*BookUnsubscribeRequest, error) {
	if len(symbols) == 0 {
		return nil, ErrEmptySymbols
	}
	if !ValidDepth(depth) {
		return nil, ErrInvalidDepth
	}
	return &BookUnsubscribeRequest{Symbol: append([]string(nil), symbols...), Depth: depth}, nil
}

func (r *BookUnsubscribeRequest) Channel() Channel  { return ChannelBook }
func (r *BookUnsubscribeRequest) Method() Method    { return MethodUnsubscribe }
func (r *BookUnsubscribeRequest) Symbols() []string { return r.Symbol }
func (r *BookUnsubscribeRequest) ReqID() int64      { return r.reqID }
func (r *BookUnsubscribeRequest) SetReqID(id int64) { r.reqID = id }
func (r *BookUnsubscribeRequest) MaxEncodedLen() int {
	return baseEnvelopeOverhead + perSymbolOverhead*len(r.Symbol)
}

func (r *BookUnsubscribeRequest) Encode(buf []byte) (int, error) {
	type params struct {
		Channel string   `json:"channel"`
		Symbol  []string `json:"symbol"`
		Depth   int      `json:"depth,omitempty"`
	}
	type envelope struct {
		Method string `json:"method"`
		Params params `json:"params"`
		ReqID  int64  `json:"req_id"`
	}
	return encodeInto(buf, envelope{
		Method: string(MethodUnsubscribe),
		Params: params{Channel: string(ChannelBook), Symbol: r.Symbol, Depth: r.Depth},
		ReqID:  r.reqID,
	})
}

// PingRequest is the protocol-level liveness probe issued by Session when
// Connection reports LivenessThreatened.
type PingRequest struct {
	reqID int64
}

func NewPingRequest() *PingRequest { return &PingRequest{} }

func (r *PingRequest) Channel() Channel   { return "" }
func (r *PingRequest) Method() Method     { return MethodPing }
func (r *PingRequest) Symbols() []string  { return nil }
func (r *PingRequest) ReqID() int64       { return r.reqID }
func (r *PingRequest) SetReqID(id int64)  { r.reqID = id }
func (r *PingRequest) MaxEncodedLen() int { return baseEnvelopeOverhead }

func (r *PingRequest) Encode(buf []byte) (int, error) {
	type envelope struct {
		Method string `json:"method"`
		ReqID  int64  `json:"req_id"`
	}
	return encodeInto(buf, envelope{Method: string(MethodPing), ReqID: r.reqID})
}
