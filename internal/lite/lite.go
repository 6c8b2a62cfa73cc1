package lite

import (
	"github.com/locar77i/wirekrak/internal/session"
	"github.com/locar77i/wirekrak/internal/wire"
)

// TradeHandler receives one symbol's worth of trade fills per invocation.
type TradeHandler func(msg wire.TradeMessage)

// BookHandler receives one symbol's worth of book snapshot/update data per
// invocation.
type BookHandler func(msg wire.BookMessage)

// SubscribeTrade subscribes to the trade channel for symbols and registers
// handler to receive every parsed, single-symbol wire.TradeMessage.
func SubscribeTrade(s *session.Session, symbols []string, snapshot bool, handler TradeHandler) (int64, error) {
	req, err := wire.NewTradeSubscribeRequest(symbols, snapshot)
	if err != nil {
		return session.InvalidReqID, err
	}
	return s.Subscribe(req, func(kind wire.Kind, payload any) {
		if msg, ok := payload.(wire.TradeMessage); ok {
			handler(msg)
		}
	})
}

// UnsubscribeTrade unsubscribes from the trade channel for symbols.
func UnsubscribeTrade(s *session.Session, symbols []string) (int64, error) {
	req, err := wire.NewTradeUnsubscribeRequest(symbols)
	if err != nil {
		return session.InvalidReqID, err
	}
	return s.Unsubscribe(req)
}

// SubscribeBook subscribes to the book channel at depth for symbols and
// registers handler to receive every parsed, single-symbol wire.BookMessage.
func SubscribeBook(s *session.Session, symbols []string, depth int, snapshot bool, handler BookHandler) (int64, error) {
	req, err := wire.NewBookSubscribeRequest(symbols, depth, snapshot)
	if err != nil {
		return session.InvalidReqID, err
	}
	return s.Subscribe(req, func(kind wire.Kind, payload any) {
		if msg, ok := payload.(wire.BookMessage); ok {
			handler(msg)
		}
	})
}

// UnsubscribeBook unsubscribes from the book channel at depth for symbols.
func UnsubscribeBook(s *session.Session, symbols []string, depth int) (int64, error) {
	req, err := wire.NewBookUnsubscribeRequest(symbols, depth)
	if err != nil {
		return session.InvalidReqID, err
	}
	return s.Unsubscribe(req)
}
