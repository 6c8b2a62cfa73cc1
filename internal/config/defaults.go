package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultURL        = "wss://ws.kraken.com/v2"
	DefaultBookDepth  = 10
	DefaultWarnWindow = 10 * time.Second
	DefaultKillWindow = 20 * time.Second
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// applyDefaults fills in every optional field left at its zero value.
func (c *TradeConfig) applyDefaults() {
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultURL
	}
	if c.Book.Depth == 0 {
		c.Book.Depth = DefaultBookDepth
	}
	if c.Liveness.WarnWindow == 0 {
		c.Liveness.WarnWindow = DefaultWarnWindow
	}
	if c.Liveness.KillWindow == 0 {
		c.Liveness.KillWindow = DefaultKillWindow
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
