package config

import "time"

// TradeConfig is the root configuration for the example trade-printing
// program (cmd/wirekrak-trade).
type TradeConfig struct {
	Feed     FeedConfig     `yaml:"feed"`
	Book     BookConfig     `yaml:"book"`
	Liveness LivenessConfig `yaml:"liveness"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// FeedConfig names the exchange endpoint and the symbols to subscribe to.
type FeedConfig struct {
	URL     string   `yaml:"url"`
	Symbols []string `yaml:"symbols"`
}

// BookConfig configures the optional order book subscription alongside trades.
type BookConfig struct {
	Enabled bool `yaml:"enabled"`
	Depth   int  `yaml:"depth"`
}

// LivenessConfig controls the liveness watchdog windows.
type LivenessConfig struct {
	WarnWindow time.Duration `yaml:"warn_window"`
	KillWindow time.Duration `yaml:"kill_window"`
}

// LoggingConfig controls the example program's log/slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" | "json"
}
