package config

import (
	"errors"
	"fmt"

	"github.com/locar77i/wirekrak/internal/wire"
)

// Validate checks that all required fields are set and values are valid.
func (c *TradeConfig) Validate() error {
	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if len(c.Feed.Symbols) == 0 {
		return errors.New("feed.symbols must be non-empty")
	}

	if c.Book.Enabled && !wire.ValidDepth(c.Book.Depth) {
		return fmt.Errorf("book.depth must be one of %v, got %d", wire.ValidDepths, c.Book.Depth)
	}

	if c.Liveness.WarnWindow <= 0 {
		return errors.New("liveness.warn_window must be positive")
	}
	if c.Liveness.KillWindow <= c.Liveness.WarnWindow {
		return fmt.Errorf("liveness.kill_window (%s) must exceed liveness.warn_window (%s)",
			c.Liveness.KillWindow, c.Liveness.WarnWindow)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}

	return nil
}
