// wirekrak-trade connects to Kraken v2 and prints trade fills (and
// optionally book updates) to the console.
//
// Usage: go run ./cmd/wirekrak-trade --config configs/trade.example.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/locar77i/wirekrak/internal/config"
	"github.com/locar77i/wirekrak/internal/lite"
	"github.com/locar77i/wirekrak/internal/session"
	"github.com/locar77i/wirekrak/internal/version"
	"github.com/locar77i/wirekrak/internal/wire"
	"github.com/locar77i/wirekrak/internal/wirekrakmetrics"
)

func main() {
	configPath := flag.String("config", "configs/trade.example.yaml", "path to config file")
	metricsPort := flag.Int("metrics-port", 9090, "port for the Prometheus /metrics endpoint")
	flag.Parse()

	logger := newLogger(config.DefaultLogLevel, config.DefaultLogFormat)
	logger.Info("starting wirekrak-trade", "version", version.String())

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = newLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded",
		"feed_url", cfg.Feed.URL,
		"symbols", cfg.Feed.Symbols,
		"book_enabled", cfg.Book.Enabled,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	registry := prometheus.NewRegistry()
	m := wirekrakmetrics.New(registry, "wirekrak_trade")

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *metricsPort),
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		logger.Info("starting metrics server", "port", *metricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		metricsServer.Shutdown(shutdownCtx)
	}()

	scfg := session.DefaultConfig(cfg.Feed.URL)
	scfg.ConnConfig.WarnWindow = cfg.Liveness.WarnWindow
	scfg.ConnConfig.KillWindow = cfg.Liveness.KillWindow

	sess := session.New(scfg, logger, m)
	defer sess.Close()

	logger.Info("connecting", "url", cfg.Feed.URL)
	if err := sess.Connect(ctx); err != nil {
		logger.Error("initial connect failed, will retry in background", "error", err)
	}

	if _, err := lite.SubscribeTrade(sess, cfg.Feed.Symbols, false, func(msg wire.TradeMessage) {
		for _, t := range msg.Data {
			fmt.Printf("[trade] %s %s %s qty=%g price=%g id=%d\n",
				t.Timestamp, t.Symbol, t.Side, t.Qty, t.Price, t.TradeID)
		}
	}); err != nil {
		logger.Error("failed to subscribe to trade channel", "error", err)
		os.Exit(1)
	}

	if cfg.Book.Enabled {
		if _, err := lite.SubscribeBook(sess, cfg.Feed.Symbols, cfg.Book.Depth, false, func(msg wire.BookMessage) {
			for _, b := range msg.Data {
				fmt.Printf("[book:%s] %s bids=%d asks=%d checksum=%d\n",
					msg.Type, b.Symbol, len(b.Bids), len(b.Asks), b.Checksum)
			}
		}); err != nil {
			logger.Error("failed to subscribe to book channel", "error", err)
			os.Exit(1)
		}
	}

	runPollLoop(ctx, sess, logger)

	logger.Info("wirekrak-trade stopped")
}

// runPollLoop drives the session's poll-based state machine until ctx is
// cancelled, logging session-level signals as they're observed.
func runPollLoop(ctx context.Context, sess *session.Session, logger *slog.Logger) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sess.Poll()
			for {
				sig, ok := sess.PollSignal()
				if !ok {
					break
				}
				logSignal(logger, sig)
			}
		}
	}
}

func logSignal(logger *slog.Logger, sig session.Signal) {
	logger.Info("session signal", "signal", sig.String())
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
