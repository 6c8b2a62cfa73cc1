// Package wire encodes and decodes the Kraken v2 JSON WebSocket envelope:
// subscribe/unsubscribe/ping requests on the way out, and the closed set of
// ACK, rejection, status, pong, trade, and book DTOs on the way in. Parsing
// is strict — anything that doesn't match a known shape is reported as a
// parse error and left for the caller to discard.
package wire
