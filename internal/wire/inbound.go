package wire

import "encoding/json"

// Kind identifies which inbound shape a raw message was classified as.
type Kind int

const (
	// KindUnknown is returned when a message matches none of the known shapes.
	KindUnknown Kind = iota
	KindAck
	KindStatus
	KindData
	KindPong
	KindRejection
)

// Ack is a subscribe/unsubscribe acknowledgment. Classify builds one only
// when the message carries a result naming a known channel, so Result is
// always populated; Success may still be false. A failure ACK without a
// result is classified as a RejectionNotice instead. Classify does not fill
// in Error.
type Ack struct {
	Method  Method
	Success bool
	ReqID   int64
	Error   string
	Result  AckResult
}

// AckResult mirrors the Kraken v2 "result" object present on a successful ACK.
type AckResult struct {
	Channel  Channel  `json:"channel"`
	Symbol   string   `json:"symbol"`
	Depth    int      `json:"depth,omitempty"`
	Snapshot bool     `json:"snapshot,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// StatusUpdate reports exchange system status changes.
type StatusUpdate struct {
	Data []StatusData
}

type StatusData struct {
	System       string `json:"system"`
	APIVersion   string `json:"api_version"`
	ConnectionID int64  `json:"connection_id"`
	Version      string `json:"version"`
}

// Pong is the protocol-level liveness reply. The source's parser treats
// Success as optional even though Kraken's own docs mark it required;
// that leniency is preserved here.
type Pong struct {
	Success    bool
	HasSuccess bool
	ReqID      int64
}

// RejectionNotice is a channel-less error with no enclosing ACK envelope.
// It may or may not name the (req_id, symbol) it applies to.
type RejectionNotice struct {
	Error     string
	ReqID     int64
	HasReqID  bool
	Symbol    string
	HasSymbol bool
}

// TradeEntry is a single fill reported on the trade channel.
type TradeEntry struct {
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Qty       float64 `json:"qty"`
	OrderType string  `json:"ord_type"`
	TradeID   int64   `json:"trade_id"`
	Timestamp string  `json:"timestamp"`
}

// TradeMessage is a parsed trade channel snapshot or update.
type TradeMessage struct {
	Type string // "snapshot" | "update"
	Data []TradeEntry
}

// BookLevel is a single price level on one side of the book.
type BookLevel struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// BookData is one symbol's book snapshot or update.
type BookData struct {
	Symbol    string      `json:"symbol"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Checksum  int64       `json:"checksum"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// BookMessage is a parsed book channel snapshot or update.
type BookMessage struct {
	Type string // "snapshot" | "update"
	Data []BookData
}

// envelope is the superset of top-level fields any inbound message might
// carry; classification inspects it before committing to a typed parse.
type envelope struct {
	Method  *string         `json:"method"`
	Success *bool           `json:"success"`
	ReqID   *int64          `json:"req_id"`
	Error   *string         `json:"error"`
	Symbol  *string         `json:"symbol"`
	Channel *string         `json:"channel"`
	Type    *string         `json:"type"`
	Result  json.RawMessage `json:"result"`
	Data    json.RawMessage `json:"data"`
}

// knownChannel reports whether name is one of the channels Wirekrak understands.
func knownChannel(name string) (Channel, bool) {
	switch Channel(name) {
	case ChannelTrade, ChannelBook, ChannelTicker, ChannelStatus, ChannelHeartbeat:
		return Channel(name), true
	default:
		return "", false
	}
}

// Classify parses raw and reports which of the five ordered shapes it
// matches, per the routing rules: ACK first, then status, then data,
// then pong/rejection. Unrecognized payloads return (KindUnknown, nil, ErrUnrecognizedMessage).
func Classify(raw []byte) (Kind, any, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return KindUnknown, nil, err
	}

	// Rule 1: method + result.channel known -> ACK (success path).
	// A failure ACK (success:false, no result) is deliberately NOT matched
	// here; it falls through to rule 4 and is routed like a rejection
	// notice, since it carries no channel/symbol to dispatch on directly.
	if env.Method != nil && len(env.Result) > 0 {
		var res AckResult
		if err := json.Unmarshal(env.Result, &res); err == nil {
			if _, ok := knownChannel(string(res.Channel)); ok {
				ack := Ack{
					Method:  Method(*env.Method),
					Success: env.Success == nil || *env.Success,
					Result:  res,
				}
				if env.ReqID != nil {
					ack.ReqID = *env.ReqID
				}
				return KindAck, ack, nil
			}
		}
	}

	// Rule 2: status update.
	if env.Channel != nil && *env.Channel == string(ChannelStatus) && env.Type != nil && len(env.Data) > 0 {
		var rows []StatusData
		if err := json.Unmarshal(env.Data, &rows); err != nil {
			return KindUnknown, nil, err
		}
		return KindStatus, StatusUpdate{Data: rows}, nil
	}

	// Rule 3: data channel snapshot/update.
	if env.Channel != nil && env.Type != nil && len(env.Data) > 0 {
		if ch, ok := knownChannel(*env.Channel); ok && ch.isData() {
			switch ch {
			case ChannelTrade:
				var rows []TradeEntry
				if err := json.Unmarshal(env.Data, &rows); err != nil {
					return KindUnknown, nil, err
				}
				return KindData, TradeMessage{Type: *env.Type, Data: rows}, nil
			case ChannelBook:
				var rows []BookData
				if err := json.Unmarshal(env.Data, &rows); err != nil {
					return KindUnknown, nil, err
				}
				return KindData, BookMessage{Type: *env.Type, Data: rows}, nil
			}
		}
	}

	// Rule 4: pong, or a channel-less error (which includes failure ACKs
	// that fell through rule 1, and genuine top-level rejection notices).
	if env.Method != nil && *env.Method == string(MethodPong) {
		p := Pong{HasSuccess: env.Success != nil}
		if env.Success != nil {
			p.Success = *env.Success
		}
		if env.ReqID != nil {
			p.ReqID = *env.ReqID
		}
		return KindPong, p, nil
	}
	if env.Channel == nil && env.Error != nil {
		rej := RejectionNotice{Error: *env.Error}
		if env.ReqID != nil {
			rej.ReqID = *env.ReqID
			rej.HasReqID = true
		}
		if env.Symbol != nil {
			rej.Symbol = *env.Symbol
			rej.HasSymbol = true
		}
		return KindRejection, rej, nil
	}

	return KindUnknown, nil, ErrUnrecognizedMessage
}
